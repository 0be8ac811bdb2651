package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveKeepsOrderAndContent(t *testing.T) {
	at := time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)
	raw, err := Archive([]File{
		{Name: "donations.csv", Data: []byte("#,Name\n1,Jane\n"), Modified: at},
		{Name: "donations.xlsx", Data: []byte{0x50, 0x4b}, Modified: at},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	require.Equal(t, "donations.csv", zr.File[0].Name)
	require.Equal(t, "donations.xlsx", zr.File[1].Name)
	require.True(t, zr.File[0].Modified.Equal(at))

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "#,Name\n1,Jane\n", string(body))
}

func TestArchiveEmpty(t *testing.T) {
	raw, err := Archive(nil)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Empty(t, zr.File)
}
