package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/richinex/fleet/tools"
)

// ListTools writes the tool set as a table. Verbose adds a parameter column,
// with required parameters marked by '*'.
func ListTools(out io.Writer, registry *tools.Registry, verbose bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Tool", "Description"}
	if verbose {
		header = append(header, "Parameters")
	}
	t.AppendHeader(header)

	for _, def := range registry.Definitions() {
		row := table.Row{def.Name, def.Description}
		if verbose {
			row = append(row, describeParameters(def.Parameters))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func describeParameters(schema map[string]interface{}) string {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := schema["required"].([]interface{}); ok {
		for _, r := range list {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]interface{})
		typ, _ := prop["type"].(string)
		desc, _ := prop["description"].(string)
		marker := ""
		if required[name] {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%s (%s): %s", name, marker, typ, desc))
	}
	return strings.Join(lines, "\n")
}
