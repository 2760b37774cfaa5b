package useragent

import (
	"math/rand"
	"sync"
	"time"
)

// A small pool of desktop and mobile browsers.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.90 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
}

// Manager hands out the user agent for this run and rotates proxies.
// Every request of a run advertises the same user agent.
type Manager struct {
	proxies    []string
	userAgent  string
	mu         sync.Mutex
	proxyIndex int
}

// NewManager picks a user agent for the run. proxies may be empty.
func NewManager(proxies []string) *Manager {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Manager{
		proxies:   proxies,
		userAgent: defaultUserAgents[r.Intn(len(defaultUserAgents))],
	}
}

// UserAgent returns the user agent chosen for this run.
func (m *Manager) UserAgent() string {
	return m.userAgent
}

// Proxy returns a proxy URL from the list, rotating sequentially.
func (m *Manager) Proxy() string {
	if len(m.proxies) == 0 {
		return "" // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}
