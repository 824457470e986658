// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotStdin string
}

func (f *fakeRuntime) Name() string                              { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool            { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	data, _ := io.ReadAll(stdin)
	f.gotStdin = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

// fakeExecutor implements container.Executor.
type fakeExecutor struct {
	missing bool
	output  string
	err     error
	gotName string
	gotArgs []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) RunSilent(context.Context, string, ...string) error { return nil }

func (f *fakeExecutor) RunPiped(_ context.Context, name string, args []string, _ io.Reader, stdout io.Writer) error {
	f.gotName, f.gotArgs = name, args
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func writePDF(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2101.00001.pdf")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestMarkitdownConverter(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		want    string
		wantErr error
	}{
		{
			name: "returns container output",
			rt:   &fakeRuntime{output: "# Title\r\n\r\nBody"},
			want: "# Title\n\nBody",
		},
		{
			name:    "empty output is a failure",
			rt:      &fakeRuntime{output: "  \n\t"},
			wantErr: ErrEmptyOutput,
		},
		{
			name: "container failure",
			rt:   &fakeRuntime{runErr: errors.New("exit status 1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := writePDF(t, []byte("%PDF-1.4 fake"))
			c, err := NewMarkitdownConverter(context.Background(), tt.rt)
			require.NoError(t, err)

			got, err := c.Convert(context.Background(), pdf)
			if tt.want == "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "%PDF-1.4 fake", tt.rt.gotStdin)
		})
	}
}

func TestMarkitdownConverterMissingImage(t *testing.T) {
	_, err := NewMarkitdownConverter(context.Background(), &fakeRuntime{imageErr: errors.New("no such image")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available")
}

func TestMarkitdownConverterMissingFile(t *testing.T) {
	c, err := NewMarkitdownConverter(context.Background(), &fakeRuntime{output: "x"})
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPdftotextConverter(t *testing.T) {
	exec := &fakeExecutor{output: "Plain text body\n"}
	c, err := NewPdftotextConverter(exec)
	require.NoError(t, err)

	got, err := c.Convert(context.Background(), "/tmp/p.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Plain text body\n", got)
	assert.Equal(t, "pdftotext", exec.gotName)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "/tmp/p.pdf", "-"}, exec.gotArgs)

	exec.output = ""
	_, err = c.Convert(context.Background(), "/tmp/p.pdf")
	assert.ErrorIs(t, err, ErrEmptyOutput)

	exec.err = errors.New("Syntax Error")
	_, err = c.Convert(context.Background(), "/tmp/p.pdf")
	assert.ErrorContains(t, err, "Syntax Error")
}

func TestPdftotextConverterMissingBinary(t *testing.T) {
	_, err := NewPdftotextConverter(&fakeExecutor{missing: true})
	assert.ErrorContains(t, err, "pdftotext not found")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), types.ConversionConfig{Backend: "ocr"}, nil)
	assert.ErrorContains(t, err, `unknown conversion backend "ocr"`)
}

func TestNewMarkitdownWithRuntime(t *testing.T) {
	c, err := New(context.Background(), types.ConversionConfig{Backend: types.BackendMarkitdown}, &fakeRuntime{})
	require.NoError(t, err)
	assert.IsType(t, &MarkitdownConverter{}, c)
}

func TestAddFrontmatter(t *testing.T) {
	p := types.Paper{ID: "2101.00001", Title: "A Title", PDFURL: "https://arxiv.org/pdf/2101.00001"}
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	got := AddFrontmatter(p, "# Body", at)
	assert.True(t, strings.HasPrefix(got, "---\n"))
	assert.Contains(t, got, `paper_id: "2101.00001"`)
	assert.Contains(t, got, `title: "A Title"`)
	assert.Contains(t, got, `source_url: "https://arxiv.org/pdf/2101.00001"`)
	assert.Contains(t, got, `converted_at: "2026-02-03T04:05:06Z"`)
	assert.True(t, strings.HasSuffix(got, "---\n\n# Body"))
}

// minimalPDF builds a structurally valid PDF with the given number of blank
// pages, computing the xref offsets as it goes.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] /Resources << >> >>",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestInspector(t *testing.T) {
	t.Run("valid pdf", func(t *testing.T) {
		info, err := Inspector{}.Inspect(writePDF(t, minimalPDF(3)))
		require.NoError(t, err)
		assert.Equal(t, 3, info.PageCount)
	})

	t.Run("page limit", func(t *testing.T) {
		info, err := Inspector{MaxPages: 2}.Inspect(writePDF(t, minimalPDF(3)))
		assert.ErrorIs(t, err, ErrTooManyPages)
		assert.Equal(t, 3, info.PageCount)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := Inspector{}.Inspect(writePDF(t, []byte("<html>rate limited</html>")))
		assert.ErrorContains(t, err, "invalid PDF")
	})
}
