package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Segment describes one position of a name grammar. Segments are matched in
// declaration order; an optional segment only sees the text its predecessors
// left over.
type Segment struct {
	// Name is the capture name of the token. Every segment carrying a token
	// must be named; composite segments (Children) are not.
	Name string
	// Separator is the literal text written before the token.
	Separator string
	// Pattern is the token set in RE2 syntax without capture groups. When
	// empty, the token set is built from Vocabulary.
	Pattern string
	// Vocabulary lists the canonical spellings of a closed token set.
	Vocabulary []string
	// Joiner allows a token to be a repetition of vocabulary words.
	Joiner string
	// Suffix is an optional RE2 tail allowed after a vocabulary word (channel
	// layouts, bit depth).
	Suffix string
	// Terminator is the literal text written after the token.
	Terminator string
	// Optional marks the segment as skippable.
	Optional bool
	// Lazy gives the segment the lowest preference: it is only used when the
	// rest of the name cannot be matched without it.
	Lazy bool
	// Canonical rewrites a token matched in case-folding mode. Vocabulary
	// segments default to the vocabulary spelling.
	Canonical func(string) string
	// Children turns the segment into an all-or-nothing group.
	Children []Segment
}

// Fields holds the captured tokens of a parsed name, keyed by segment name.
type Fields map[string]string

// Get returns the token captured for name, or "".
func (f Fields) Get(name string) string {
	return f[name]
}

// Grammar is a compiled, ordered list of segments.
type Grammar struct {
	name     string
	segments []Segment
	exact    *regexp.Regexp
	folded   *regexp.Regexp
	byName   map[string]*Segment
}

// Compile builds a grammar from its segment list. It panics on a malformed
// segment list; grammars are package-level values built at init time.
func Compile(name string, segments ...Segment) *Grammar {
	g := &Grammar{
		name:     name,
		segments: segments,
		byName:   make(map[string]*Segment),
	}

	var sb strings.Builder
	sb.WriteString("^")
	for i := range g.segments {
		if err := g.writeSegment(&sb, &g.segments[i]); err != nil {
			panic(fmt.Sprintf("naming: grammar %s: %v", name, err))
		}
	}
	sb.WriteString("$")

	expr := sb.String()
	g.exact = regexp.MustCompile(expr)
	g.folded = regexp.MustCompile("(?i)" + expr)
	return g
}

func (g *Grammar) writeSegment(sb *strings.Builder, s *Segment) error {
	open, closeGroup := "", ""
	if s.Optional {
		open = "(?:"
		closeGroup = ")?"
		if s.Lazy {
			closeGroup = ")??"
		}
	}
	sb.WriteString(open)

	if len(s.Children) > 0 {
		if s.Name != "" {
			return fmt.Errorf("composite segment %q cannot carry a token", s.Name)
		}
		for i := range s.Children {
			if err := g.writeSegment(sb, &s.Children[i]); err != nil {
				return err
			}
		}
		sb.WriteString(closeGroup)
		return nil
	}

	if s.Name == "" {
		return fmt.Errorf("leaf segment %d has no name", len(g.byName))
	}
	if _, dup := g.byName[s.Name]; dup {
		return fmt.Errorf("duplicate segment %q", s.Name)
	}
	pattern := s.tokenPattern()
	if pattern == "" {
		return fmt.Errorf("segment %q has an empty token set", s.Name)
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("segment %q: %w", s.Name, err)
	}
	g.byName[s.Name] = s

	sb.WriteString(regexp.QuoteMeta(s.Separator))
	sb.WriteString("(?P<")
	sb.WriteString(s.Name)
	sb.WriteString(">")
	sb.WriteString(pattern)
	sb.WriteString(")")
	sb.WriteString(regexp.QuoteMeta(s.Terminator))
	sb.WriteString(closeGroup)
	return nil
}

// tokenPattern returns the RE2 token set of a leaf segment.
func (s *Segment) tokenPattern() string {
	if s.Pattern != "" {
		return s.Pattern
	}
	if len(s.Vocabulary) == 0 {
		return ""
	}
	word := alternation(s.Vocabulary)
	if s.Suffix != "" {
		word = "(?:" + word + ")(?:" + s.Suffix + ")?"
	}
	if s.Joiner != "" {
		return word + "(?:" + regexp.QuoteMeta(s.Joiner) + word + ")*"
	}
	return word
}

// alternation quotes the words and orders them longest first so that a word
// is never shadowed by one of its own prefixes.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// Name returns the grammar's name.
func (g *Grammar) Name() string {
	return g.name
}

// Match parses s. With fold set the match is case-insensitive and vocabulary
// tokens are rewritten to their canonical spelling.
func (g *Grammar) Match(s string, fold bool) (Fields, bool) {
	re := g.exact
	if fold {
		re = g.folded
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	fields := make(Fields, len(g.byName))
	for i, name := range re.SubexpNames() {
		if name == "" || m[i] == "" {
			continue
		}
		value := m[i]
		if fold {
			value = g.byName[name].canonicalize(value)
		}
		fields[name] = value
	}
	return fields, true
}

// Format writes the fields back in grammar order. Optional segments with no
// value are skipped; a composite segment is written only when one of its
// children has a value.
func (g *Grammar) Format(fields Fields) string {
	var sb strings.Builder
	for i := range g.segments {
		formatSegment(&sb, &g.segments[i], fields)
	}
	return sb.String()
}

func formatSegment(sb *strings.Builder, s *Segment, fields Fields) {
	if len(s.Children) > 0 {
		if s.Optional && !anyValue(s.Children, fields) {
			return
		}
		for i := range s.Children {
			formatSegment(sb, &s.Children[i], fields)
		}
		return
	}
	value := fields[s.Name]
	if value == "" && s.Optional {
		return
	}
	sb.WriteString(s.Separator)
	sb.WriteString(value)
	sb.WriteString(s.Terminator)
}

func anyValue(segments []Segment, fields Fields) bool {
	for i := range segments {
		if len(segments[i].Children) > 0 {
			if anyValue(segments[i].Children, fields) {
				return true
			}
			continue
		}
		if fields[segments[i].Name] != "" {
			return true
		}
	}
	return false
}

// Accepts reports whether value is a member of the named segment's token set.
func (g *Grammar) Accepts(name, value string) bool {
	s, ok := g.byName[name]
	if !ok {
		return false
	}
	re, err := regexp.Compile("^(?:" + s.tokenPattern() + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func (s *Segment) canonicalize(value string) string {
	if s.Canonical != nil {
		return s.Canonical(value)
	}
	if len(s.Vocabulary) == 0 {
		return value
	}
	if s.Joiner == "" {
		return canonicalWord(s.Vocabulary, value)
	}
	words := strings.Split(value, s.Joiner)
	for i, w := range words {
		words[i] = canonicalWord(s.Vocabulary, w)
	}
	return strings.Join(words, s.Joiner)
}

// canonicalWord replaces the longest vocabulary prefix of value with its
// canonical spelling and keeps the remainder (suffix) as written.
func canonicalWord(vocabulary []string, value string) string {
	best := ""
	for _, w := range vocabulary {
		if len(w) > len(value) || len(w) <= len(best) {
			continue
		}
		if strings.EqualFold(value[:len(w)], w) {
			best = w
		}
	}
	if best == "" {
		return value
	}
	return best + value[len(best):]
}

// Conflict reports a vocabulary token of a later segment that an earlier
// greedy segment would consume.
type Conflict struct {
	Earlier string
	Later   string
	Token   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s swallows %s token %q", c.Earlier, c.Later, c.Token)
}

// Conflicts checks the boundary contract between segments: no token of a
// later vocabulary segment may be a full match of an earlier greedy optional
// segment behind the same separator. Lazy segments are exempt; they yield to
// every later segment by construction. The check is case-insensitive so it
// covers both parse modes.
func (g *Grammar) Conflicts() []Conflict {
	leaves := flatten(g.segments)

	var conflicts []Conflict
	for i, earlier := range leaves {
		if !earlier.Optional || earlier.Lazy {
			continue
		}
		re := regexp.MustCompile("^(?i:" + regexp.QuoteMeta(earlier.Separator) + "(?:" + earlier.tokenPattern() + "))$")
		for _, later := range leaves[i+1:] {
			for _, word := range later.Vocabulary {
				if re.MatchString(later.Separator + word) {
					conflicts = append(conflicts, Conflict{
						Earlier: earlier.Name,
						Later:   later.Name,
						Token:   word,
					})
				}
			}
		}
	}
	return conflicts
}

// flatten lists leaf segments in order; children of an optional composite
// inherit its optionality.
func flatten(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if len(s.Children) == 0 {
			out = append(out, s)
			continue
		}
		for _, c := range flatten(s.Children) {
			if s.Optional {
				c.Optional = true
			}
			out = append(out, c)
		}
	}
	return out
}
