package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/pcrank/core"
	"gopkg.in/yaml.v3"
)

// DefaultRole is the committee role assigned when a row carries none.
const DefaultRole = "pc_member"

// Dataset is a decoded dataset document.
type Dataset struct {
	Editions    []EditionRecord    `yaml:"editions"`
	Researchers []ResearcherRecord `yaml:"researchers"`
}

// EditionRecord names a conference edition that may have no members yet.
type EditionRecord struct {
	Series string `yaml:"series"`
	Year   optInt `yaml:"year"`
}

// ResearcherRecord is one researcher entry as it appears in a source file.
// Flat committee rows use Conference, Year and Role to name the edition
// the researcher served on.
type ResearcherRecord struct {
	ID                core.ID             `yaml:"id"`
	Name              string              `yaml:"name"`
	FullName          string              `yaml:"full_name"`
	Affiliation       string              `yaml:"affiliation"`
	Country           string              `yaml:"country"`
	Bio               string              `yaml:"bio"`
	ResearchInterests string              `yaml:"research_interests"`
	Topics            []string            `yaml:"topics"`
	WorksCount        optInt              `yaml:"works_count"`
	WorksCountAlt     optInt              `yaml:"worksCount"`
	CitedByCount      optInt              `yaml:"cited_by_count"`
	CitationCount     optInt              `yaml:"citation_count"`
	HIndex            optInt              `yaml:"h_index"`
	CountsByYear      countsByYear        `yaml:"counts_by_year"`
	Publications      []PublicationRecord `yaml:"publications"`
	Services          []ServiceRecord     `yaml:"services"`
	Conference        string              `yaml:"conference"`
	Year              optInt              `yaml:"year"`
	Role              string              `yaml:"role"`
}

// PublicationRecord is one authored work.
type PublicationRecord struct {
	Title string `yaml:"title"`
	Year  optInt `yaml:"year"`
	Venue string `yaml:"venue"`
}

// ServiceRecord is one committee membership. Conference is accepted as an
// alias for Series.
type ServiceRecord struct {
	Series     string `yaml:"series"`
	Conference string `yaml:"conference"`
	Year       optInt `yaml:"year"`
	Role       string `yaml:"role"`
}

// LoadFile decodes the dataset stored at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a dataset document from r. An empty document yields an
// empty dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	ds := &Dataset{}
	var err error
	switch {
	case root.ShortTag() == "!!null":
	case root.Kind == yaml.SequenceNode:
		err = root.Decode(&ds.Researchers)
	case root.Kind == yaml.MappingNode:
		err = root.Decode(ds)
	default:
		err = errors.New("document root must be a list or a mapping")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return ds, nil
}

// Candidates converts the researcher records into canonical candidates.
// Records whose normalized names match are merged into the first one seen.
// Records without a name are passed through so validation can reject them.
func (d *Dataset) Candidates() []*core.Candidate {
	byName := make(map[string]*core.Candidate, len(d.Researchers))
	out := make([]*core.Candidate, 0, len(d.Researchers))
	for i := range d.Researchers {
		c := d.Researchers[i].candidate()
		key := core.NormalizeName(c.FullName)
		if key == "" {
			out = append(out, c)
			continue
		}
		if existing, ok := byName[key]; ok {
			mergeCandidate(existing, c)
			continue
		}
		byName[key] = c
		out = append(out, c)
	}
	return out
}

// EditionList returns the explicitly listed editions. Editions without a
// series or a year are dropped.
func (d *Dataset) EditionList() []*core.Edition {
	out := make([]*core.Edition, 0, len(d.Editions))
	for _, e := range d.Editions {
		series := strings.TrimSpace(e.Series)
		if series == "" || !e.Year.set || e.Year.n < 0 {
			continue
		}
		out = append(out, &core.Edition{
			Id:     core.EditionID(series, e.Year.n),
			Series: series,
			Year:   e.Year.n,
		})
	}
	return out
}

func (r *ResearcherRecord) candidate() *core.Candidate {
	name := strings.TrimSpace(r.FullName)
	if name == "" {
		name = strings.TrimSpace(r.Name)
	}

	c := &core.Candidate{
		Id:           r.ID,
		FullName:     name,
		Affiliation:  strings.TrimSpace(r.Affiliation),
		Country:      strings.TrimSpace(r.Country),
		Interests:    strings.TrimSpace(r.ResearchInterests),
		Bio:          strings.TrimSpace(r.Bio),
		WorksCount:   r.WorksCount.or(r.WorksCountAlt).ptr(),
		CitedByCount: r.CitedByCount.or(r.CitationCount).ptr(),
		HIndex:       r.HIndex.ptr(),
		CountsByYear: slices.Clone([]core.YearCount(r.CountsByYear)),
	}
	for _, t := range r.Topics {
		addTopic(c, t)
	}
	for _, p := range r.Publications {
		addPublication(c, core.Publication{
			Title: strings.TrimSpace(p.Title),
			Year:  p.Year.n,
			Venue: strings.TrimSpace(p.Venue),
		})
	}
	for _, s := range r.Services {
		series := s.Series
		if strings.TrimSpace(series) == "" {
			series = s.Conference
		}
		addService(c, series, s.Year.n, s.Role)
	}
	if strings.TrimSpace(r.Conference) != "" {
		addService(c, r.Conference, r.Year.n, r.Role)
	}
	return c
}

// mergeCandidate fills fields of dst that are still missing from src and
// unions the list fields.
func mergeCandidate(dst, src *core.Candidate) {
	if dst.Id == 0 {
		dst.Id = src.Id
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&dst.Affiliation, src.Affiliation)
	fill(&dst.Country, src.Country)
	fill(&dst.Interests, src.Interests)
	fill(&dst.Bio, src.Bio)

	if dst.WorksCount == nil {
		dst.WorksCount = src.WorksCount
	}
	if dst.CitedByCount == nil {
		dst.CitedByCount = src.CitedByCount
	}
	if dst.HIndex == nil {
		dst.HIndex = src.HIndex
	}
	if len(dst.CountsByYear) == 0 {
		dst.CountsByYear = src.CountsByYear
	}

	for _, t := range src.Topics {
		addTopic(dst, t)
	}
	for _, p := range src.Publications {
		addPublication(dst, p)
	}
	for _, s := range src.Services {
		addService(dst, s.Series, s.Year, s.Role)
	}
}

func addTopic(c *core.Candidate, topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	for _, t := range c.Topics {
		if strings.EqualFold(t, topic) {
			return
		}
	}
	c.Topics = append(c.Topics, topic)
}

func addPublication(c *core.Candidate, p core.Publication) {
	if p.Title == "" {
		return
	}
	for _, existing := range c.Publications {
		if existing.Year == p.Year && strings.EqualFold(existing.Title, p.Title) {
			return
		}
	}
	c.Publications = append(c.Publications, p)
}

// addService appends a membership unless the candidate already served on
// the same edition.
func addService(c *core.Candidate, series string, year int, role string) {
	series = strings.TrimSpace(series)
	if series == "" {
		return
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}
	s := core.Service{Series: series, Year: year, Role: role}
	for _, existing := range c.Services {
		if existing.EditionID() == s.EditionID() {
			return
		}
	}
	c.Services = append(c.Services, s)
}

// optInt is an integer that may be absent. Numeric strings are accepted;
// values that are not numbers decode as absent.
type optInt struct {
	n   int
	set bool
}

func (o *optInt) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return nil
	}
	s := strings.TrimSpace(value.Value)
	if n, err := strconv.Atoi(s); err == nil {
		o.n, o.set = n, true
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		o.n, o.set = int(f), true
	}
	return nil
}

func (o optInt) or(other optInt) optInt {
	if o.set {
		return o
	}
	return other
}

func (o optInt) ptr() *int {
	if !o.set {
		return nil
	}
	n := o.n
	return &n
}

// countRow is one counts_by_year bucket. worksCount is accepted as an
// alias for works_count.
type countRow struct {
	Year          optInt `yaml:"year"`
	WorksCount    optInt `yaml:"works_count"`
	WorksCountAlt optInt `yaml:"worksCount"`
	CitedByCount  optInt `yaml:"cited_by_count"`
}

// countsByYear decodes per-year counts given either as a list of buckets or
// as JSON text holding that list. Malformed text decodes as absent, and
// entries that are not mappings or carry no year are skipped.
type countsByYear []core.YearCount

func (c *countsByYear) UnmarshalYAML(value *yaml.Node) error {
	node := value
	if value.Kind == yaml.ScalarNode {
		text := strings.TrimSpace(value.Value)
		if text == "" {
			return nil
		}
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
			return nil
		}
		node = &doc
		if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
			node = node.Content[0]
		}
	}
	if node.Kind != yaml.SequenceNode {
		return nil
	}

	out := make(countsByYear, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		var row countRow
		if err := item.Decode(&row); err != nil || !row.Year.set {
			continue
		}
		out = append(out, core.YearCount{
			Year:         row.Year.n,
			WorksCount:   row.WorksCount.or(row.WorksCountAlt).n,
			CitedByCount: row.CitedByCount.n,
		})
	}
	*c = out
	return nil
}
