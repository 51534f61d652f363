package designer

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
)

// WriteZip serializes the bundle into the CamporeeConfig archive layout:
// camporee.json and presets.json at the root, games/<id>.json per game.
func (b *Bundle) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	write := func(name string, v any) error {
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s in bundle: %w", name, err)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		return nil
	}

	if err := write("camporee.json", b.Camporee); err != nil {
		return err
	}
	if err := write("presets.json", b.Presets); err != nil {
		return err
	}
	for _, g := range b.Games {
		if err := write("games/"+g.ID+".json", g); err != nil {
			return err
		}
	}
	return zw.Close()
}
