package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Directory is the identity of a title folder:
//
//	Default[=Original].Year[.Translated][Rating-Count-ContentRating][ResolutionSource][3D][HDR]
//
// The rating block is always present, unknown values written as "-"; the
// remaining bracketed blocks are optional. Titles are stored as parts. The
// first part is a run without boundary characters; every further part keeps
// its leading '-' or InstallmentSeparator so the name is reassembled exactly.
type Directory struct {
	DefaultTitle    [3]string
	OriginalTitle   [3]string
	TranslatedTitle [4]string
	Year            string // empty when unknown

	AggregateRating      string // empty when unknown, written as "-"
	AggregateRatingCount string
	ContentRating        string

	Resolution string // "1080"
	Source     string // tier letter and audio count, "x2"
	Is3D       bool
	Hdr        bool
}

const (
	segDefaultTitle         = "DefaultTitle"
	segOriginalTitle        = "OriginalTitle"
	segTranslatedTitle      = "TranslatedTitle"
	segAggregateRating      = "AggregateRating"
	segAggregateRatingCount = "AggregateRatingCount"
	segContentRating        = "ContentRating"
	segResolution           = "Resolution"
	segSource               = "Source"
	segHdr                  = "Hdr"

	hdrToken     = "HDR"
	unknownField = "-"

	titleRun = `[^.\-=：\[\]/\\]+`
)

var directoryGrammar = Compile("directory", directorySegments()...)

func titleParts(name, firstSeparator string, n int, optional bool) Segment {
	parts := make([]Segment, n)
	for i := range parts {
		parts[i] = Segment{
			Name:     name + strconv.Itoa(i+1),
			Pattern:  `[\-：]` + titleRun,
			Optional: true,
		}
	}
	parts[0] = Segment{Name: name + "1", Separator: firstSeparator, Pattern: titleRun}
	return Segment{Children: parts, Optional: optional}
}

func directorySegments() []Segment {
	return []Segment{
		titleParts(segDefaultTitle, "", 3, false),
		titleParts(segOriginalTitle, "=", 3, true),
		{Name: segYear, Separator: ".", Pattern: `[0-9]{4}|-{4}`},
		titleParts(segTranslatedTitle, ".", 4, true),
		{Children: []Segment{
			{Name: segAggregateRating, Separator: "[", Pattern: `10(?:\.0)?|[0-9](?:\.[0-9])?|-`},
			{Name: segAggregateRatingCount, Separator: "-", Pattern: `[0-9]+(?:\.[0-9]+)?[KM]?|-`},
			{Name: segContentRating, Separator: "-", Pattern: `[^\[\]/\\]+`, Terminator: "]"},
		}},
		{Optional: true, Children: []Segment{
			{Name: segResolution, Separator: "[", Pattern: `[0-9]{3,4}`},
			{Name: segSource, Pattern: `[A-Za-z][0-9]+`, Terminator: "]"},
		}},
		{Name: segThreeD, Separator: "[", Vocabulary: []string{ThreeDToken}, Terminator: "]", Optional: true},
		{Name: segHdr, Separator: "[", Vocabulary: []string{hdrToken}, Terminator: "]", Optional: true},
	}
}

// DirectoryGrammar exposes the compiled directory grammar for inspection.
func DirectoryGrammar() *Grammar {
	return directoryGrammar
}

// TryParseDirectory parses a title folder name. Any leading path is ignored.
func TryParseDirectory(name string) (Directory, bool) {
	fields, ok := directoryGrammar.Match(filepath.Base(filepath.Clean(name)), false)
	if !ok {
		return Directory{}, false
	}
	var d Directory
	for i := range d.DefaultTitle {
		d.DefaultTitle[i] = fields.Get(segDefaultTitle + strconv.Itoa(i+1))
		d.OriginalTitle[i] = fields.Get(segOriginalTitle + strconv.Itoa(i+1))
	}
	for i := range d.TranslatedTitle {
		d.TranslatedTitle[i] = fields.Get(segTranslatedTitle + strconv.Itoa(i+1))
	}
	d.Year = knownOrEmpty(fields.Get(segYear), UnknownYear)
	d.AggregateRating = knownOrEmpty(fields.Get(segAggregateRating), unknownField)
	d.AggregateRatingCount = knownOrEmpty(fields.Get(segAggregateRatingCount), unknownField)
	d.ContentRating = knownOrEmpty(fields.Get(segContentRating), unknownField)
	d.Resolution = fields.Get(segResolution)
	d.Source = fields.Get(segSource)
	d.Is3D = fields.Get(segThreeD) != ""
	d.Hdr = fields.Get(segHdr) != ""
	return d, true
}

// ParseDirectory is TryParseDirectory returning ErrMalformedName on failure.
func ParseDirectory(name string) (Directory, error) {
	d, ok := TryParseDirectory(name)
	if !ok {
		return Directory{}, malformed(KindDirectory, name)
	}
	return d, nil
}

// FormatDirectory builds the canonical folder name of d.
func FormatDirectory(d Directory) string {
	f := Fields{
		segYear:       orPlaceholder(d.Year, UnknownYear),
		segResolution: d.Resolution,
		segSource:     d.Source,
	}
	for i, part := range d.DefaultTitle {
		f[segDefaultTitle+strconv.Itoa(i+1)] = part
	}
	for i, part := range d.OriginalTitle {
		f[segOriginalTitle+strconv.Itoa(i+1)] = part
	}
	for i, part := range d.TranslatedTitle {
		f[segTranslatedTitle+strconv.Itoa(i+1)] = part
	}
	f[segAggregateRating] = orPlaceholder(d.AggregateRating, unknownField)
	f[segAggregateRatingCount] = orPlaceholder(d.AggregateRatingCount, unknownField)
	f[segContentRating] = orPlaceholder(d.ContentRating, unknownField)
	if d.Is3D {
		f[segThreeD] = ThreeDToken
	}
	if d.Hdr {
		f[segHdr] = hdrToken
	}
	return directoryGrammar.Format(f)
}

// String returns the canonical folder name.
func (d Directory) String() string {
	return FormatDirectory(d)
}

// FormattedDefinition is the bracketed resolution and source summary, or ""
// when no source has been selected.
func (d Directory) FormattedDefinition() string {
	if d.Source == "" {
		return ""
	}
	return "[" + d.Resolution + d.Source + "]"
}

// Title returns the default title with its original boundaries.
func (d Directory) Title() string {
	return strings.Join(d.DefaultTitle[:], "")
}

// Original returns the original-language title, or "".
func (d Directory) Original() string {
	return strings.Join(d.OriginalTitle[:], "")
}

// Translated returns the translated title, or "".
func (d Directory) Translated() string {
	return strings.Join(d.TranslatedTitle[:], "")
}

// Validate reports whether d formats to a name that parses back to d.
func (d Directory) Validate() error {
	if d.DefaultTitle[0] == "" {
		return invalidField(segDefaultTitle, d.Title())
	}
	got, ok := TryParseDirectory(FormatDirectory(d))
	if !ok {
		return invalidField(segDefaultTitle, d.Title())
	}
	checks := []struct {
		segment   string
		got, want string
	}{
		{segDefaultTitle, got.Title(), d.Title()},
		{segOriginalTitle, got.Original(), d.Original()},
		{segTranslatedTitle, got.Translated(), d.Translated()},
		{segYear, got.Year, d.Year},
		{segAggregateRating, got.AggregateRating, d.AggregateRating},
		{segAggregateRatingCount, got.AggregateRatingCount, d.AggregateRatingCount},
		{segContentRating, got.ContentRating, d.ContentRating},
		{segResolution, got.Resolution, d.Resolution},
		{segSource, got.Source, d.Source},
	}
	for _, c := range checks {
		if c.got != c.want {
			return invalidField(c.segment, c.want)
		}
	}
	if got != d {
		return invalidField(segDefaultTitle, d.Title())
	}
	return nil
}

// SetTitles splits provider titles into parts. Original and translated
// titles may be empty.
func (d *Directory) SetTitles(title, original, translated string) error {
	parts, err := SplitTitle(title, len(d.DefaultTitle))
	if err != nil {
		return err
	}
	d.DefaultTitle = [3]string{}
	copy(d.DefaultTitle[:], parts)

	d.OriginalTitle = [3]string{}
	if original != "" && original != title {
		if parts, err = SplitTitle(original, len(d.OriginalTitle)); err != nil {
			return err
		}
		copy(d.OriginalTitle[:], parts)
	}

	d.TranslatedTitle = [4]string{}
	if translated != "" && translated != title {
		if parts, err = SplitTitle(translated, len(d.TranslatedTitle)); err != nil {
			return err
		}
		copy(d.TranslatedTitle[:], parts)
	}
	return nil
}

var titleReplacer = strings.NewReplacer(
	": ", InstallmentSeparator,
	":", InstallmentSeparator,
	".", "",
	"=", " ",
	"[", "(",
	"]", ")",
	"/", " ",
	`\`, " ",
)

// SplitTitle cleans a display title for use in a folder name and splits it
// at each '-' and installment separator, the boundary kept on the part that
// follows it. A title needing more than max parts is rejected.
func SplitTitle(title string, max int) ([]string, error) {
	clean := strings.TrimSpace(titleReplacer.Replace(title))
	var parts []string
	start := 0
	for i, r := range clean {
		if i > start && (r == '-' || string(r) == InstallmentSeparator) {
			parts = append(parts, clean[start:i])
			start = i
		}
	}
	parts = append(parts, clean[start:])
	if len(parts) > max {
		return nil, invalidField(segDefaultTitle, title)
	}
	for i, p := range parts {
		body := p
		if i > 0 {
			body = strings.TrimPrefix(strings.TrimPrefix(p, "-"), InstallmentSeparator)
		}
		if body == "" || strings.ContainsAny(body, "-=[]./\\") || strings.Contains(body, InstallmentSeparator) {
			return nil, invalidField(segDefaultTitle, title)
		}
	}
	return parts, nil
}

func knownOrEmpty(v, placeholder string) string {
	if v == placeholder {
		return ""
	}
	return v
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
