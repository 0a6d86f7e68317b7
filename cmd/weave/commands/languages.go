package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"git.home.luguber.info/inful/weave/internal/languages"
)

// LanguagesCmd implements the 'languages' command.
type LanguagesCmd struct{}

func (l *LanguagesCmd) Run(_ *Global, _ *CLI) error {
	registry, err := languages.Load()
	if err != nil {
		return err
	}

	type row struct {
		ext  string
		desc languages.Descriptor
	}
	var rows []row
	for ext, desc := range registry.Entries() {
		rows = append(rows, row{ext: ext, desc: desc})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ext < rows[j].ext })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXTENSION\tLANGUAGE\tCOMMENT\tBLOCK")
	for _, r := range rows {
		block := ""
		if r.desc.HasBlock() {
			block = r.desc.BlockStart + " " + r.desc.BlockEnd
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ext, r.desc.Name, r.desc.Comment, block)
	}
	return w.Flush()
}
