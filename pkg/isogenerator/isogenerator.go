// Package isogenerator writes small ISO 9660 images in memory. It backs test
// fixtures; mkiso itself always leaves image creation to the external tool.
package isogenerator

import (
	"bytes"
	"sort"

	"github.com/kdomanski/iso9660"
)

// Generate writes an ISO 9660 image containing files, keyed by their path
// inside the image, with the volume identifier label.
func Generate(files map[string][]byte, label string) ([]byte, error) {
	isoWriter, err := iso9660.NewWriter()
	if err != nil {
		return nil, err
	}
	defer isoWriter.Cleanup()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := isoWriter.AddFile(bytes.NewReader(files[name]), name); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := isoWriter.WriteTo(&buf, label); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
