// Package catalog converts the backend's action catalog into MCP tool
// descriptors. Each backend category becomes a namespace prefix on the
// tool name, and categories that operate on a project get a projectId
// parameter injected ahead of the action's own parameters.
package catalog

import (
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// Category tags a group of backend actions. The set is closed and known
// at build time.
type Category string

const (
	Project Category = "project"
	Canvas  Category = "canvas"
	Backend Category = "backend"
	System  Category = "system"
	MongoDB Category = "mongodb"
	Agents  Category = "agents"
	Deploy  Category = "deploy"
	Account Category = "account"
)

// traits holds the per-category behavior flags consulted during
// translation and dispatch.
type traits struct {
	requiresContextID bool
}

var categoryTraits = map[Category]traits{
	Project: {requiresContextID: false},
	Canvas:  {requiresContextID: true},
	Backend: {requiresContextID: true},
	System:  {requiresContextID: true},
	MongoDB: {requiresContextID: true},
	Agents:  {requiresContextID: true},
	Deploy:  {requiresContextID: true},
	Account: {requiresContextID: false},
}

// Known reports whether c is part of the closed category set.
func Known(c Category) bool {
	_, ok := categoryTraits[c]
	return ok
}

// RequiresContextID reports whether invocations in this category must
// carry a project reference.
func RequiresContextID(c Category) bool {
	return categoryTraits[c].requiresContextID
}

// Categories returns the closed category set in stable order.
func Categories() []Category {
	cats := make([]Category, 0, len(categoryTraits))
	for c := range categoryTraits {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// ToolName builds the externally visible tool name for an action.
// Category and action are joined by a single underscore; the action name
// itself may contain underscores and is never re-split.
func ToolName(c Category, action string) string {
	return string(c) + "_" + action
}

// Title derives a human-readable title from an upper-snake action name,
// e.g. READ_FILE becomes "Read File".
func Title(action string) string {
	words := strings.Fields(strcase.ToDelimited(action, ' '))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
