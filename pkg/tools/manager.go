package tools

import (
	"fmt"
	"sort"
	"sync"
)

// Manager manages the available tools
type Manager struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewManager creates a Manager holding the given tools.
func NewManager(tools ...Tool) *Manager {
	m := &Manager{tools: make(map[string]Tool)}
	for _, t := range tools {
		m.Register(t)
	}
	return m
}

// Register adds a tool, replacing any tool with the same name.
func (m *Manager) Register(tool Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[tool.Name()] = tool
}

// List returns all registered tools sorted by name.
func (m *Manager) List() []Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts := make([]Tool, 0, len(m.tools))
	for _, t := range m.tools {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name() < ts[j].Name() })
	return ts
}

// Get retrieves a tool by name
func (m *Manager) Get(name string) (Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tool, ok := m.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}
