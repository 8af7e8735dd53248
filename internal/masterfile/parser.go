package masterfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EndOfHeaderMarker separates the masterfile header from the preamble comments.
const EndOfHeaderMarker = ";; end mfannot"

var (
	headerRe   = regexp.MustCompile(`^>\s*(\S+)(.*)$`)
	transRe    = regexp.MustCompile(`(?i)/trans\s*=\s*(\d+)`)
	boundaryRe = regexp.MustCompile(`^;\s*(G)-(\S+)\s+(<==\*?|\*?==>)\s+(start|end|point)(.*)$`)
	// A line that announces a boundary but does not complete the grammar.
	boundaryPrefixRe = regexp.MustCompile(`^;\s*G-\S+\s+(<==\*?|\*?==>)`)
	groupRe          = regexp.MustCompile(`/group=(\S+)`)
)

// Option configures a Parser.
type Option func(*Parser)

// WithAmbiguity controls whether IUPAC ambiguity codes are accepted
// (and folded to N) in sequence lines. Enabled by default.
func WithAmbiguity(allow bool) Option {
	return func(p *Parser) { p.allowAmbiguity = allow }
}

// WithLogger sets the logger for warning and debug messages.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// Parser reads masterfiles into Documents.
type Parser struct {
	allowAmbiguity bool
	logger         *zap.Logger
}

// NewParser creates a parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		allowAmbiguity: true,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a whole masterfile from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	return NewParser(opts...).Parse(r)
}

// ParseFile reads the masterfile at path. Compressed files are supported.
func ParseFile(path string, opts ...Option) (*Document, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := Parse(rc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a whole masterfile from r.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	row := p.parsePreamble(doc, lines)

	seen := make(map[string]bool)
	for row < len(lines) {
		c, next, err := p.parseContig(lines, row)
		if err != nil {
			return nil, err
		}
		if seen[c.Header()] {
			return nil, &ParseError{Line: row + 1, Text: lines[row], Err: ErrDuplicateContigHeader}
		}
		seen[c.Header()] = true
		doc.Contigs = append(doc.Contigs, c)
		row = next
	}

	return doc, nil
}

// readLines returns every line of r with surrounding whitespace removed.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	// Sequence lines are short but preambles can be long.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read masterfile: %w", err)
	}
	return lines, nil
}

// parsePreamble captures everything before the first contig header and
// returns the index of that header.
func (p *Parser) parsePreamble(doc *Document, lines []string) int {
	var header, comment []string
	afterHeader := false

	row := 0
	for ; row < len(lines) && !strings.HasPrefix(lines[row], ">"); row++ {
		line := lines[row]
		if strings.HasPrefix(line, EndOfHeaderMarker) {
			afterHeader = true
			continue
		}
		if afterHeader {
			comment = append(comment, line)
		} else {
			header = append(header, line)
		}
	}

	doc.HeaderLines = header
	doc.CommentLines = comment
	if len(comment) == 0 {
		doc.CommentLines = header
	}
	return row
}

// contigState holds the running state while one contig body is ingested.
type contigState struct {
	contig     *Contig
	seq        strings.Builder
	seqPos     int // real bases ingested so far
	lineNumber int // content lines seen so far
	pairs      pairingTable
}

// parseContig parses the header at lines[row] and the body that follows it.
// It returns the contig and the index of the next unconsumed line.
func (p *Parser) parseContig(lines []string, row int) (*Contig, int, error) {
	m := headerRe.FindStringSubmatch(lines[row])
	if m == nil {
		return nil, row, &ParseError{Line: row + 1, Text: lines[row], Err: ErrMalformedHeader}
	}

	st := &contigState{
		contig: &Contig{Name: m[1], NameComments: m[2]},
		pairs:  make(pairingTable),
	}
	if tm := transRe.FindStringSubmatch(m[2]); tm != nil {
		st.contig.GeneticCode, _ = strconv.Atoi(tm[1])
	}
	row++

	for row < len(lines) {
		text := lines[row]
		lineNo := row + 1
		row++

		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ">") {
			row--
			break
		}

		if text[0] != ';' {
			if err := p.ingestSequence(st, text, lineNo); err != nil {
				return nil, row, err
			}
			continue
		}

		st.lineNumber++
		var multi []string
		for row < len(lines) && strings.HasSuffix(lines[row-1], `\`) && strings.HasPrefix(lines[row], ";") {
			multi = append(multi, lines[row])
			row++
		}

		if bm := boundaryRe.FindStringSubmatch(text); bm != nil {
			p.ingestBoundary(st, text, bm, multi)
			continue
		}
		if boundaryPrefixRe.MatchString(text) {
			return nil, row, &ParseError{Line: lineNo, Text: text, Err: ErrUnparsableAnnotationLine}
		}

		st.contig.Add(&Record{
			Kind: KindComment,
			Start: Boundary{
				Pos:          st.seqPos + 1,
				HasPos:       true,
				Line:         text,
				MultiComment: multi,
				LineNumber:   st.lineNumber,
			},
		})
	}

	p.finishContig(st)
	return st.contig, row, nil
}

// ingestSequence appends one sequence line. Leading coordinate counters are ignored.
func (p *Parser) ingestSequence(st *contigState, text string, lineNo int) error {
	dna := strings.TrimLeft(text, "0123456789 \t")
	if dna == "" {
		return nil
	}
	st.lineNumber++

	folded, bases, err := FoldSequence(dna, p.allowAmbiguity)
	if err != nil {
		return &ParseError{Line: lineNo, Text: text, Err: err}
	}
	st.seq.WriteString(folded)
	st.seqPos += bases
	return nil
}

// ingestBoundary records a start, end or point boundary line.
func (p *Parser) ingestBoundary(st *contigState, text string, m []string, multi []string) {
	kind, name, arrow, which := Kind(m[1]), m[2], m[3], m[4]
	dir := ParseDirection(arrow)

	var group string
	if gm := groupRe.FindStringSubmatch(text); gm != nil {
		group = gm[1]
	}

	b := Boundary{
		Pos:          boundaryPos(dir, which, st.seqPos),
		HasPos:       true,
		Line:         text,
		MultiComment: multi,
		LineNumber:   st.lineNumber,
	}

	newRecord := func() *Record {
		r := &Record{
			Kind:            kind,
			GeneName:        name,
			IntronGroupType: group,
			Direction:       dir,
		}
		st.contig.Add(r)
		return r
	}

	if which == "point" {
		r := newRecord()
		r.Point = true
		r.Start = b
		r.End = Boundary{Pos: b.Pos, HasPos: true, LineNumber: b.LineNumber}
		return
	}

	side := SideStart
	if which == "end" {
		side = SideEnd
	}
	st.pairs.place(pairingKey(kind, name), side, b, newRecord)
}

// boundaryPos converts the running base count into the 1-based coordinate
// of a boundary read on the given strand.
func boundaryPos(dir Direction, which string, seqPos int) int {
	if dir == DirectionReverse {
		if which == "end" {
			return seqPos + 1
		}
		return seqPos
	}
	if which == "end" {
		return seqPos
	}
	return seqPos + 1
}

// finishContig stores the sequence and renormalizes gene names.
func (p *Parser) finishContig(st *contigState) {
	c := st.contig
	c.Sequence = st.seq.String()
	c.SequenceLength = CountBases(c.Sequence)

	for _, r := range c.Annotations {
		r.Kind, r.GeneName = NormalizeGeneName(r.Kind, r.GeneName)
	}

	for key := range st.pairs {
		if n := st.pairs.open(key); n > 0 {
			p.logger.Debug("unpaired boundaries",
				zap.String("contig", c.Name),
				zap.String("key", key),
				zap.Int("open", n))
		}
	}

	for _, r := range CheckMonotonic(c) {
		p.logger.Warn("annotation coordinates out of order",
			zap.String("contig", c.Name),
			zap.String("gene", r.GeneName),
			zap.String("direction", r.Direction.String()),
			zap.Int("start", r.Start.Pos),
			zap.Int("end", r.End.Pos))
	}
}

// CheckMonotonic returns the complete records of c whose coordinates run
// against their direction: start after end on the forward strand, or end
// after start on the reverse strand.
func CheckMonotonic(c *Contig) []*Record {
	var bad []*Record
	for _, r := range c.Annotations {
		if !r.Complete() {
			continue
		}
		switch r.Direction {
		case DirectionForward:
			if r.Start.Pos > r.End.Pos {
				bad = append(bad, r)
			}
		case DirectionReverse:
			if r.End.Pos > r.Start.Pos {
				bad = append(bad, r)
			}
		}
	}
	return bad
}
