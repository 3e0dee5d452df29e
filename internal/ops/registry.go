/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
)

// CommandGroup classifies a command for grouped help output.
type CommandGroup string

const (
	GroupDocs        CommandGroup = "docs"        // validate, conflicts, fix
	GroupMaintenance CommandGroup = "maintenance" // cache, ingest, watch
	GroupSupport     CommandGroup = "support"     // config, version
)

// Groups lists the groups in help order.
var Groups = []CommandGroup{GroupDocs, GroupMaintenance, GroupSupport}

// Title is the heading printed above a group in help output.
func (g CommandGroup) Title() string {
	switch g {
	case GroupDocs:
		return "Document Commands"
	case GroupMaintenance:
		return "Maintenance Commands"
	case GroupSupport:
		return "Support Commands"
	default:
		return string(g)
	}
}

// CommandRegistration represents a registered command with its classification
type CommandRegistration struct {
	Name        string
	Group       CommandGroup
	Command     *cobra.Command
	Description string
}

// Registry tracks the commands of one root command tree.
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]*CommandRegistration
	groupIndex map[CommandGroup][]*CommandRegistration
}

func NewRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]*CommandRegistration),
		groupIndex: make(map[CommandGroup][]*CommandRegistration),
	}
}

// Register adds a command. The description defaults to the command's Short.
func (r *Registry) Register(group CommandGroup, cmd *cobra.Command) error {
	if cmd == nil {
		return fmt.Errorf("nil command")
	}
	name := cmd.Name()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	reg := &CommandRegistration{Name: name, Group: group, Command: cmd, Description: cmd.Short}
	r.commands[name] = reg
	r.groupIndex[group] = append(r.groupIndex[group], reg)
	return nil
}

// Get returns a registered command by name
func (r *Registry) Get(name string) (*CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// Group returns the commands of a group sorted by name.
func (r *Registry) Group(group CommandGroup) []*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]*CommandRegistration(nil), r.groupIndex[group]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len is the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
