package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	weaveerrors "git.home.luguber.info/inful/weave/internal/errors"
)

// walkDirectory collects documentable files below dir. Hidden entries and
// common build output directories are skipped, as is anything the language
// registry does not recognise.
func (p *Processor) walkDirectory(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, rerr := p.registry.Resolve(path, p.opts.LanguageOverride); rerr != nil {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, "walk "+dir)
	}
	return files, nil
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}
