package backend

import (
	"io"

	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
)

// progressReader counts bytes as they are read and reports them to the
// upload progress callback.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress driven.UploadProgress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}
