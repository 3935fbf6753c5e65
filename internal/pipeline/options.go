package pipeline

import "fmt"

// Column names shared by the availability files and the stages below.
const (
	ColProviderID  = "provider_id"
	ColLocationID  = "location_id"
	ColBlockGeoid  = "block_geoid"
	ColTechnology  = "technology_code_desc"
	ColDownloadMax = "max_advertised_download_speed"
	ColResidential = "business_residential_code"
	ColUniqueCount = "n_unique_locations"
	ColProviderSpd = "provider_speed"
	ColStateName   = "state_name"
)

// DefaultFootprintTechs is the technology triple the secondary-fetch
// footprint variant downloads when no explicit anchor technology subset is
// configured.
var DefaultFootprintTechs = []string{"Cable", "Copper", "Fiber to the Premises"}

// RollupLevel is a target geography expressed as a GEOID prefix length.
type RollupLevel int

const (
	LevelState      RollupLevel = 2
	LevelCounty     RollupLevel = 5
	LevelTract      RollupLevel = 11
	LevelBlockGroup RollupLevel = 12
	LevelBlock      RollupLevel = 15
)

// ParseRollupLevel maps a config string to a prefix length.
func ParseRollupLevel(s string) (RollupLevel, error) {
	switch s {
	case "state":
		return LevelState, nil
	case "county":
		return LevelCounty, nil
	case "tract":
		return LevelTract, nil
	case "block_group", "cbg":
		return LevelBlockGroup, nil
	case "block":
		return LevelBlock, nil
	}
	return 0, fmt.Errorf("unknown rollup level %q", s)
}

func (l RollupLevel) String() string {
	switch l {
	case LevelState:
		return "state"
	case LevelCounty:
		return "county"
	case LevelTract:
		return "tract"
	case LevelBlockGroup:
		return "block_group"
	case LevelBlock:
		return "block"
	}
	return fmt.Sprintf("RollupLevel(%d)", int(l))
}

// Options selects the filters, grouping mode, and rollup behavior for one
// run. The two group flags jointly pick exactly one of three final key
// shapes; see Aggregate for the precedence.
type Options struct {
	ResidentialOnly bool

	// AnchorProviders define the location-id footprint every row must fall
	// inside. Empty means no footprint filtering.
	AnchorProviders []int64
	// AnchorTechs optionally restricts the footprint to rows of these
	// technologies. Requires the technology column when set.
	AnchorTechs []string
	// SecondaryFootprint re-downloads a parallel dataset (restricted to
	// AnchorTechs, or DefaultFootprintTechs when empty) and derives the
	// footprint from it instead of the primary dataset.
	SecondaryFootprint bool

	ExcludedProviders []int64

	GroupOnSpeed      bool
	GroupOnTechnology bool

	Rollup      bool
	RollupLevel RollupLevel

	// GeoidAllowList, when non-nil, keeps only aggregated rows whose
	// block_geoid is in the set.
	GeoidAllowList map[string]struct{}

	// AttachStateName stamps each state partition with its state name
	// before the merge.
	AttachStateName bool
}
