package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/pcrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingDataset = `
editions:
  - series: ICSE
    year: 2026
  - series: ""
    year: 2020
researchers:
  - full_name: Ada Lovelace
    citation_count: 120
    worksCount: "14"
    research_interests: program analysis; verification
    topics: [Verification, verification, " "]
    counts_by_year: '[{"year": 2023, "works_count": 3, "cited_by_count": 10}, {"year": 2022, "worksCount": 2}, 7]'
    publications:
      - title: Notes on the Engine
        year: 2023
      - title: ""
    services:
      - conference: ICSE
        year: 2024
  - name: "ada   LOVELACE"
    cited_by_count: 999
    affiliation: Analytical Engines Ltd
    conference: FSE
    year: 2023
    role: chair
  - full_name: Grace Hopper
    id: 42
    cited_by_count: 50
    citation_count: 10
    works_count: 5
    h_index: 9
    counts_by_year:
      - year: 2024
        works_count: 4
      - works_count: 1
`

func TestDecode_Mapping(t *testing.T) {
	ds, err := Decode(strings.NewReader(mappingDataset))
	require.NoError(t, err)
	require.Len(t, ds.Researchers, 3)

	editions := ds.EditionList()
	require.Len(t, editions, 1)
	assert.Equal(t, "ICSE", editions[0].Series)
	assert.Equal(t, 2026, editions[0].Year)
	assert.Equal(t, core.EditionID("icse", 2026), editions[0].Id)

	candidates := ds.Candidates()
	require.Len(t, candidates, 2)

	ada := candidates[0]
	assert.Equal(t, "Ada Lovelace", ada.FullName)
	require.NotNil(t, ada.CitedByCount)
	assert.Equal(t, 120, *ada.CitedByCount, "first record wins, citation_count is the fallback")
	require.NotNil(t, ada.WorksCount)
	assert.Equal(t, 14, *ada.WorksCount)
	assert.Nil(t, ada.HIndex)
	assert.Equal(t, "Analytical Engines Ltd", ada.Affiliation)
	assert.Equal(t, []string{"Verification"}, ada.Topics)
	assert.Equal(t, []core.YearCount{
		{Year: 2023, WorksCount: 3, CitedByCount: 10},
		{Year: 2022, WorksCount: 2},
	}, ada.CountsByYear)
	assert.Equal(t, []core.Publication{{Title: "Notes on the Engine", Year: 2023}}, ada.Publications)
	assert.Equal(t, []core.Service{
		{Series: "ICSE", Year: 2024, Role: DefaultRole},
		{Series: "FSE", Year: 2023, Role: "chair"},
	}, ada.Services)

	grace := candidates[1]
	assert.Equal(t, core.ID(42), grace.Id)
	require.NotNil(t, grace.CitedByCount)
	assert.Equal(t, 50, *grace.CitedByCount)
	require.NotNil(t, grace.HIndex)
	assert.Equal(t, 9, *grace.HIndex)
	assert.Equal(t, []core.YearCount{{Year: 2024, WorksCount: 4}}, grace.CountsByYear)
	assert.Empty(t, grace.Services)
}

func TestDecode_CommitteeRows(t *testing.T) {
	rows := `[
  {"name": "Alan Turing", "conference": "ICSE", "year": 2023, "research_interests": "testing, machine learning"},
  {"name": "alan turing", "conference": "ICSE", "year": 2023},
  {"name": "Alan Turing", "conference": "ICSE", "year": "2024", "bio": "Codebreaker"},
  {"name": "Barbara Liskov", "conference": "FSE", "counts_by_year": "not json ["}
]`
	ds, err := Decode(strings.NewReader(rows))
	require.NoError(t, err)

	candidates := ds.Candidates()
	require.Len(t, candidates, 2)

	alan := candidates[0]
	assert.Equal(t, "testing, machine learning", alan.Interests)
	assert.Equal(t, "Codebreaker", alan.Bio)
	assert.Equal(t, []core.Service{
		{Series: "ICSE", Year: 2023, Role: DefaultRole},
		{Series: "ICSE", Year: 2024, Role: DefaultRole},
	}, alan.Services)

	barbara := candidates[1]
	assert.Empty(t, barbara.CountsByYear)
	assert.Equal(t, []core.Service{{Series: "FSE", Year: 0, Role: DefaultRole}}, barbara.Services)
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	ds, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds.Candidates())

	ds, err = Decode(strings.NewReader("~"))
	require.NoError(t, err)
	assert.Empty(t, ds.Researchers)

	_, err = Decode(strings.NewReader("just a string"))
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = Decode(strings.NewReader("researchers: [\n"))
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = Decode(strings.NewReader("researchers:\n  - id: not-a-number\n"))
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestDecode_UnnamedRecordsAreKept(t *testing.T) {
	ds, err := Decode(strings.NewReader("- affiliation: Nowhere\n- affiliation: Elsewhere\n"))
	require.NoError(t, err)
	assert.Len(t, ds.Candidates(), 2)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mappingDataset), 0o600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Researchers, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptInt(t *testing.T) {
	var o optInt
	assert.Nil(t, o.ptr())
	assert.Equal(t, 7, *optInt{n: 7, set: true}.ptr())
	assert.Equal(t, 3, optInt{}.or(optInt{n: 3, set: true}).n)
	assert.Equal(t, 1, optInt{n: 1, set: true}.or(optInt{n: 3, set: true}).n)
}
