package antidetect

import (
	"math/rand/v2"
	"sync"
)

// defaultUserAgents is used when no list is configured.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Manager rotates user agents and proxies. Pure data selection: user agents
// are picked at random, proxies sequentially.
type Manager struct {
	mu         sync.Mutex
	userAgents []string
	proxies    []string
	proxyIndex int
}

// NewManager builds a manager. Empty slices fall back to the default user
// agent list and to no proxy.
func NewManager(userAgents, proxies []string) *Manager {
	if len(userAgents) == 0 {
		userAgents = defaultUserAgents
	}
	return &Manager{
		userAgents: userAgents,
		proxies:    proxies,
	}
}

// UserAgent returns a random user agent string.
func (m *Manager) UserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[rand.IntN(len(m.userAgents))]
}

// Proxy returns the next proxy URL in rotation, or "" when none are
// configured.
func (m *Manager) Proxy() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.proxies) == 0 {
		return ""
	}
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}
