// Package svnlog turns Subversion XML logs into revision records.
//
// Logs come from `svn log -v --xml`, either read from a file or produced by
// running the svn client. Parsing streams one logentry at a time.
package svnlog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// ErrMalformedLog is returned when the input is not a well-formed svn XML log.
var ErrMalformedLog = errors.New("svnlog: malformed log")

// NoAuthor is recorded for revisions committed without an author.
const NoAuthor = "(no author)"

type logEntry struct {
	Revision string    `xml:"revision,attr"`
	Author   string    `xml:"author"`
	Date     string    `xml:"date"`
	Paths    []logPath `xml:"paths>path"`
	Msg      string    `xml:"msg"`
}

type logPath struct {
	Action string `xml:"action,attr"`
	Path   string `xml:",chardata"`
}

// Parse reads a complete svn XML log and returns its records ordered by
// revision number. Control characters that svn lets through in log messages
// are removed before parsing.
func Parse(r io.Reader) ([]revision.Record, error) {
	var records []revision.Record

	err := Each(r, func(rec revision.Record) error {
		records = append(records, rec)

		return nil
	})
	if err != nil {
		return nil, err
	}

	revision.SortByNumber(records)

	return records, nil
}

// Each streams the records of an svn XML log to fn in document order. It
// stops at the first error returned by fn.
func Each(r io.Reader, fn func(revision.Record) error) error {
	dec := xml.NewDecoder(NewFilterReader(r))
	sawLog := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedLog, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "log":
			sawLog = true
		case "logentry":
			var entry logEntry

			if err = dec.DecodeElement(&entry, &start); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedLog, err)
			}

			rec, convErr := entry.record()
			if convErr != nil {
				return convErr
			}

			if err = fn(rec); err != nil {
				return err
			}
		}
	}

	if !sawLog {
		return fmt.Errorf("%w: no <log> element", ErrMalformedLog)
	}

	return nil
}

func (e *logEntry) record() (revision.Record, error) {
	number, err := strconv.ParseInt(strings.TrimSpace(e.Revision), 10, 64)
	if err != nil {
		return revision.Record{}, fmt.Errorf("%w: revision %q: %w", ErrMalformedLog, e.Revision, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(e.Date))
	if err != nil {
		return revision.Record{}, fmt.Errorf("%w: r%d date %q: %w", ErrMalformedLog, number, e.Date, err)
	}

	author := strings.TrimSpace(e.Author)
	if author == "" {
		author = NoAuthor
	}

	rec := revision.Record{
		Number:    number,
		Author:    author,
		Timestamp: ts.UTC(),
		Message:   e.Msg,
	}

	for _, p := range e.Paths {
		action, actErr := revision.ParseAction(strings.TrimSpace(p.Action))
		if actErr != nil {
			return revision.Record{}, fmt.Errorf("%w: r%d path %s: %w", ErrMalformedLog, number, p.Path, actErr)
		}

		rec.ChangedPaths = append(rec.ChangedPaths, revision.ChangedPath{
			Action: action,
			Path:   strings.TrimSpace(p.Path),
		})
	}

	return rec, nil
}
