package warcidx

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/andycostintoma/warc/internal/warcio"
	"github.com/andycostintoma/warc/internal/warcrec"
)

// Config is the policy knob set for index construction, the struct-of-
// knobs shape the teacher's ParseLimits/HeaderLimits use: a logger for
// progress and skip diagnostics, whether a malformed record should be
// logged and skipped rather than aborting the whole build, and the
// maximum line length a record's header block (and any embedded HTTP
// message within it) is allowed before it is treated as malformed.
type Config struct {
	Logger         *log.Logger
	SkipMalformed  bool
	MaxHeaderBytes int
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c Config) maxHeaderBytes() int {
	if c.MaxHeaderBytes > 0 {
		return c.MaxHeaderBytes
	}
	return warcrec.DefaultMaxLineBytes
}

func (c Config) readerLimits() warcrec.ReaderLimits {
	return warcrec.ReaderLimits{MaxLineBytes: c.maxHeaderBytes()}
}

func (c Config) httpMessageLimits() warcrec.HTTPMessageLimits {
	return warcrec.HTTPMessageLimits{MaxLineBytes: c.maxHeaderBytes()}
}

// Build streams ch (one WARC file, optionally already gzip-member-decoded
// via warcio.NewGzipMemberChannel) and inserts a Capture for every
// response/resource record whose target URI scheme is http or https.
// file is recorded on each Capture as the provenance path. The first
// indexed record whose payload content-type is text/html becomes idx's
// entrypoint, if one hasn't been set already.
func Build(ctx context.Context, ch warcio.ByteChannel, file string, idx *Index, cfg Config) error {
	reader := warcrec.NewReaderWithLimits(ch, cfg.readerLimits())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if cfg.SkipMalformed && !reader.Poisoned() {
				cfg.logger().Warn("skipping malformed record", "file", file, "offset", reader.Position(), "err", err)
				continue
			}
			return err
		}

		if err := indexOne(reader, rec, file, idx, cfg); err != nil {
			if cfg.SkipMalformed {
				cfg.logger().Warn("skipping malformed capture candidate", "file", file, "offset", reader.Position(), "err", err)
				continue
			}
			return err
		}
	}
}

func indexOne(reader *warcrec.Reader, rec *warcrec.Record, file string, idx *Index, cfg Config) error {
	kind, err := rec.Type()
	if err != nil {
		return err
	}
	if kind != warcrec.TypeResponse && kind != warcrec.TypeResource {
		return nil
	}

	uri, ok := rec.TargetURI()
	if !ok {
		return nil
	}
	scheme := warcrec.URIScheme(uri)
	if scheme != "http" && scheme != "https" {
		return nil
	}

	instant, err := rec.Date()
	if err != nil {
		return err
	}

	isHTML, err := isHTMLPayload(rec, cfg)
	if err != nil {
		return err
	}

	idx.Insert(Capture{
		TargetURI: uri,
		Instant:   instant,
		File:      file,
		Offset:    reader.Position(),
	}, isHTML)
	return nil
}

// isHTMLPayload reports whether rec's payload content-type (excluding any
// ";parameter" suffix) is text/html. For response records the payload
// content-type is carried by the embedded HTTP message's own headers, not
// the record's WARC-level Content-Type (which is application/http);
// reading just the embedded start line and headers does not require
// consuming the payload body, which the reader drains regardless on the
// next Next call.
func isHTMLPayload(rec *warcrec.Record, cfg Config) (bool, error) {
	ct, ok := rec.ContentTypeValue()
	if !ok {
		return false, nil
	}
	if ct != "application/http" {
		return ct == "text/html", nil
	}

	dispatched, err := warcrec.Dispatch(rec)
	if err != nil {
		return false, err
	}
	resp, ok := dispatched.(warcrec.ResponseRecord)
	if !ok {
		return false, nil
	}
	msg, err := resp.HTTPMessageWithLimits(cfg.httpMessageLimits())
	if err != nil {
		return false, err
	}
	embeddedCT, ok := msg.Header.Get(warcrec.ContentType)
	if !ok {
		return false, nil
	}
	return contentTypeIsHTML(embeddedCT), nil
}

func contentTypeIsHTML(ct string) bool {
	for i := 0; i < len(ct); i++ {
		if ct[i] == ';' {
			ct = ct[:i]
			break
		}
	}
	return ct == "text/html"
}

// FileChannel pairs a byte channel with the file path it was opened from,
// so BuildMany can report provenance without re-deriving it from the
// channel itself.
type FileChannel struct {
	Path    string
	Channel warcio.ByteChannel
}

// BuildMany indexes several WARC files concurrently — each file's records
// form no shared mutable state with any other file's, so per-file
// construction fans out across an errgroup and the resulting per-file
// indexes are merged, in file order, into one Index.
func BuildMany(ctx context.Context, files []FileChannel, cfg Config) (*Index, error) {
	result := NewIndex()
	partials := make([]*Index, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		partials[i] = NewIndex()
		g.Go(func() error {
			return Build(gctx, f.Channel, f.Path, partials[i], cfg)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range partials {
		result.Merge(p)
	}
	return result, nil
}

// NewFileChannel pairs a byte channel with the path it reads from, for use
// with BuildMany.
func NewFileChannel(path string, ch warcio.ByteChannel) FileChannel {
	return FileChannel{Path: path, Channel: ch}
}
