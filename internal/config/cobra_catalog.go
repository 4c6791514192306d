package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagType describes the Go type a flag value is coerced to.
type FlagType int

const (
	FlagTypeString FlagType = iota
	FlagTypeBool
)

// FlagCatalog exposes the commands and flags a build profile may reference.
type FlagCatalog interface {
	IsCommandSupported(command string) bool
	FlagType(command, flag string) (FlagType, bool)
	AnyFlagType(flag string) (FlagType, bool)
	Commands() []string
}

type cobraCatalog struct {
	commands map[string]map[string]FlagType
	index    map[string]FlagType
	order    []string
}

// NewCobraCatalog builds a catalog from a Cobra command tree.
func NewCobraCatalog(root *cobra.Command) FlagCatalog {
	c := &cobraCatalog{
		commands: make(map[string]map[string]FlagType),
		index:    make(map[string]FlagType),
	}
	c.walk(root, nil)
	return c
}

func (c *cobraCatalog) walk(cmd *cobra.Command, parents []string) {
	path := append(append([]string(nil), parents...), cmd.Name())
	commandPath := strings.Join(path, " ")
	flags := make(map[string]FlagType)

	record := func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		flags[flag.Name] = flagType(flag)
	}
	cmd.InheritedFlags().VisitAll(record)
	cmd.NonInheritedFlags().VisitAll(record)

	c.commands[commandPath] = flags
	c.order = append(c.order, commandPath)
	for name, t := range flags {
		if _, ok := c.index[name]; !ok {
			c.index[name] = t
		}
	}

	for _, child := range cmd.Commands() {
		if !child.Hidden {
			c.walk(child, path)
		}
	}
}

func (c *cobraCatalog) IsCommandSupported(command string) bool {
	_, ok := c.commands[command]
	return ok
}

func (c *cobraCatalog) FlagType(command, flag string) (FlagType, bool) {
	flags, ok := c.commands[command]
	if !ok {
		return 0, false
	}
	t, found := flags[flag]
	return t, found
}

func (c *cobraCatalog) AnyFlagType(flag string) (FlagType, bool) {
	t, ok := c.index[flag]
	return t, ok
}

func (c *cobraCatalog) Commands() []string {
	return append([]string(nil), c.order...)
}

func flagType(flag *pflag.Flag) FlagType {
	if flag.Value.Type() == "bool" {
		return FlagTypeBool
	}
	return FlagTypeString
}
