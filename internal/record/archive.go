package record

import (
	"archive/zip"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// Fixed archive member names, identical for every session.
const (
	archiveMetadataName = "metadata.json"
	archiveDataName     = "samples.ndjson"
)

// writeArchive bundles the metadata file and the sample log into a zip
// archive with exactly those two members.
func writeArchive(zipPath, metaPath, dataPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	members := []struct{ name, path string }{
		{archiveMetadataName, metaPath},
		{archiveDataName, dataPath},
	}
	for _, m := range members {
		if err := addArchiveMember(zw, m.name, m.path); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func addArchiveMember(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
