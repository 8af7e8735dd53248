package external

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// ErrInvalidRecord is returned for collection entries that cannot become records.
var ErrInvalidRecord = errors.New("invalid annotation record")

var (
	collectionExpr = xpath.MustCompile("//AnnotPairCollection")
	pairExpr       = xpath.MustCompile(".//AnnotPair")
)

// Collection is one AnnotPairCollection element.
type Collection struct {
	ContigName string // empty when the collection does not name its contig
	Records    []*masterfile.Record
}

// DecodeCollection reads every AnnotPair in r, across all collections.
func DecodeCollection(r io.Reader) ([]*masterfile.Record, error) {
	cols, err := DecodeCollections(r)
	if err != nil {
		return nil, err
	}
	var records []*masterfile.Record
	for _, col := range cols {
		records = append(records, col.Records...)
	}
	return records, nil
}

// DecodeCollections reads the AnnotPairCollection elements in r. A document
// without a collection element is read as a single anonymous collection.
func DecodeCollections(r io.Reader) ([]Collection, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing collection XML: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(root, collectionExpr)
	if len(nodes) == 0 {
		nodes = []*xmlquery.Node{root}
	}

	cols := make([]Collection, 0, len(nodes))
	for _, n := range nodes {
		col := Collection{ContigName: contigName(n)}
		for i, pn := range xmlquery.QuerySelectorAll(n, pairExpr) {
			rec, err := decodePair(pn)
			if err != nil {
				return nil, fmt.Errorf("AnnotPair %d: %w", i+1, err)
			}
			col.Records = append(col.Records, rec)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func contigName(n *xmlquery.Node) string {
	if v := n.SelectAttr("contig"); v != "" {
		return v
	}
	if e := n.SelectElement("contigname"); e != nil {
		return strings.TrimSpace(e.InnerText())
	}
	return ""
}

// field returns the trimmed text of n's child element name.
func field(n *xmlquery.Node, name string) (string, bool) {
	e := n.SelectElement(name)
	if e == nil {
		return "", false
	}
	return strings.TrimSpace(e.InnerText()), true
}

func decodePair(n *xmlquery.Node) (*masterfile.Record, error) {
	r := &masterfile.Record{}

	kind, _ := field(n, "type")
	switch masterfile.Kind(kind) {
	case masterfile.KindGene, masterfile.KindExon, masterfile.KindIntron,
		masterfile.KindSignal, masterfile.KindComment, masterfile.KindExcluded:
		r.Kind = masterfile.Kind(kind)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, kind)
	}

	r.GeneName, _ = field(n, "genename")
	r.IntronGroupType, _ = field(n, "introntype")
	r.GlobalType, _ = field(n, "globaltype")

	if d, ok := field(n, "direction"); ok && d != "" {
		r.Direction = masterfile.ParseDirection(d)
		if r.Direction == masterfile.DirectionUnknown {
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidRecord, d)
		}
	}

	if err := decodeSide(n, "start", &r.Start); err != nil {
		return nil, err
	}
	if err := decodeSide(n, "end", &r.End); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeSide fills b from the <prefix>pos, <prefix>line, <prefix>linenumber
// and <prefix>multicomment elements.
func decodeSide(n *xmlquery.Node, prefix string, b *masterfile.Boundary) error {
	if v, ok := field(n, prefix+"pos"); ok && v != "" {
		pos, err := strconv.Atoi(v)
		if err != nil || pos < 0 {
			return fmt.Errorf("%w: %spos %q", ErrInvalidRecord, prefix, v)
		}
		b.SetPos(pos)
	}
	if v, ok := field(n, prefix+"linenumber"); ok && v != "" {
		ln, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %slinenumber %q", ErrInvalidRecord, prefix, v)
		}
		b.LineNumber = ln
	}
	b.Line, _ = field(n, prefix+"line")
	b.MultiComment = multiComment(n.SelectElement(prefix + "multicomment"))
	return nil
}

// multiComment reads continuation lines either as child elements or as
// newline-separated text.
func multiComment(n *xmlquery.Node) []string {
	if n == nil {
		return nil
	}
	var lines []string
	hasElements := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		hasElements = true
		if s := strings.TrimSpace(c.InnerText()); s != "" {
			lines = append(lines, s)
		}
	}
	if hasElements {
		return lines
	}
	for _, s := range strings.Split(n.InnerText(), "\n") {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}
