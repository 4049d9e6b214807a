package lcp

import "fmt"

// Quantity is a physical quantity stored in a landscape file, numbered in
// on-disk order.
type Quantity int

// Quantities in on-disk order
const (
	Elevation Quantity = iota
	Slope
	Aspect
	FuelModel
	CanopyCover
	CanopyHeight
	CanopyBaseHeight
	CanopyBulkDensity
	Duff
	CoarseWoody
)

type quantityInfo struct {
	label  string
	prefix string

	// unitKey and unitNameKey are the band metadata keys of the unit code
	// and its description.
	unitKey     string
	unitNameKey string

	defaultUnit int16
	unitNames   map[int16]string

	// choices maps creation option values to unit codes.
	choices []unitChoice
}

type unitChoice struct {
	code int16
	// names lists accepted spellings; a trailing '*' accepts any suffix.
	names []string
}

var quantities = [MaxBands]quantityInfo{
	Elevation: {
		label: "Elevation", prefix: "ELEVATION",
		unitKey: "ELEVATION_UNIT", unitNameKey: "ELEVATION_UNIT_NAME",
		defaultUnit: 0,
		unitNames:   map[int16]string{0: "Meters", 1: "Feet"},
		choices: []unitChoice{
			{0, []string{"METER*"}},
			{1, []string{"FEET", "FOOT"}},
		},
	},
	Slope: {
		label: "Slope", prefix: "SLOPE",
		unitKey: "SLOPE_UNIT", unitNameKey: "SLOPE_UNIT_NAME",
		defaultUnit: 0,
		unitNames:   map[int16]string{0: "Degrees", 1: "Percent"},
		choices: []unitChoice{
			{0, []string{"DEGREES"}},
			{1, []string{"PERCENT"}},
		},
	},
	Aspect: {
		label: "Aspect", prefix: "ASPECT",
		unitKey: "ASPECT_UNIT", unitNameKey: "ASPECT_UNIT_NAME",
		defaultUnit: 2,
		unitNames:   map[int16]string{0: "Grass categories", 1: "Grass degrees", 2: "Azimuth degrees"},
		choices: []unitChoice{
			{0, []string{"GRASS_CATEGORIES"}},
			{1, []string{"GRASS_DEGREES"}},
			{2, []string{"AZIMUTH_DEGREES"}},
		},
	},
	FuelModel: {
		label: "Fuel models", prefix: "FUEL_MODEL",
		unitKey: "FUEL_MODEL_OPTION", unitNameKey: "FUEL_MODEL_OPTION_DESC",
		defaultUnit: 0,
		unitNames: map[int16]string{
			0: "no custom models AND no conversion file needed",
			1: "custom models BUT no conversion file needed",
			2: "no custom models BUT conversion file needed",
			3: "custom models AND conversion file needed",
		},
		choices: []unitChoice{
			{0, []string{"NO_CUSTOM_AND_NO_FILE"}},
			{1, []string{"CUSTOM_AND_NO_FILE"}},
			{2, []string{"NO_CUSTOM_AND_FILE"}},
			{3, []string{"CUSTOM_AND_FILE"}},
		},
	},
	CanopyCover: {
		label: "Canopy cover", prefix: "CANOPY_COV",
		unitKey: "CANOPY_COV_UNIT", unitNameKey: "CANOPY_COV_UNIT_NAME",
		defaultUnit: 1,
		unitNames:   map[int16]string{0: "Categories (0-4)", 1: "Percent"},
		choices: []unitChoice{
			{0, []string{"CATEGORIES"}},
			{1, []string{"PERCENT"}},
		},
	},
	CanopyHeight: {
		label: "Canopy height", prefix: "CANOPY_HT",
		unitKey: "CANOPY_HT_UNIT", unitNameKey: "CANOPY_HT_UNIT_NAME",
		defaultUnit: 3,
		unitNames:   heightUnitNames,
		choices:     heightChoices,
	},
	CanopyBaseHeight: {
		label: "Canopy base height", prefix: "CBH",
		unitKey: "CBH_UNIT", unitNameKey: "CBH_UNIT_NAME",
		defaultUnit: 3,
		unitNames:   heightUnitNames,
		choices:     heightChoices,
	},
	CanopyBulkDensity: {
		label: "Canopy bulk density", prefix: "CBD",
		unitKey: "CBD_UNIT", unitNameKey: "CBD_UNIT_NAME",
		defaultUnit: 3,
		unitNames: map[int16]string{
			1: "kg/m^3", 2: "lb/ft^3", 3: "kg/m^3 x 100", 4: "lb/ft^3 x 1000",
		},
		choices: []unitChoice{
			{1, []string{"KG_PER_CUBIC_METER"}},
			{2, []string{"POUND_PER_CUBIC_FOOT"}},
			{3, []string{"KG_PER_CUBIC_METER_X_100"}},
			{4, []string{"POUND_PER_CUBIC_FOOT_X_1000"}},
		},
	},
	Duff: {
		label: "Duff", prefix: "DUFF",
		unitKey: "DUFF_UNIT", unitNameKey: "DUFF_UNIT_NAME",
		defaultUnit: 1,
		unitNames:   map[int16]string{1: "Mg/ha", 2: "t/ac"},
		choices: []unitChoice{
			{1, []string{"MG_PER_HECTARE_X_10"}},
			{2, []string{"TONS_PER_ACRE_X_10"}},
		},
	},
	CoarseWoody: {
		label: "Coarse woody debris", prefix: "CWD",
		unitKey:     "CWD_OPTION",
		defaultUnit: 0,
	},
}

var heightUnitNames = map[int16]string{1: "Meters", 2: "Feet", 3: "Meters x 10", 4: "Feet x 10"}

var heightChoices = []unitChoice{
	{1, []string{"METERS", "METER"}},
	{2, []string{"FEET", "FOOT"}},
	{3, []string{"METERS_X_10", "METER_X_10"}},
	{4, []string{"FEET_X_10", "FOOT_X_10"}},
}

func (q Quantity) info() *quantityInfo {
	if q < 0 || int(q) >= len(quantities) {
		panic(fmt.Sprintf("lcp: quantity %d out of range", int(q)))
	}
	return &quantities[q]
}

// Label returns the band description, e.g. "Canopy cover".
func (q Quantity) Label() string { return q.info().label }

// Prefix returns the metadata key prefix, e.g. "CANOPY_COV".
func (q Quantity) Prefix() string { return q.info().prefix }

// UnitKey returns the metadata key of the unit code. It doubles as the
// creation option name.
func (q Quantity) UnitKey() string { return q.info().unitKey }

// DefaultUnit returns the unit code written when no option overrides it.
func (q Quantity) DefaultUnit() int16 { return q.info().defaultUnit }

// UnitName describes a unit code, or returns false for unknown codes.
func (q Quantity) UnitName(code int16) (string, bool) {
	name, ok := q.info().unitNames[code]
	return name, ok
}

func (q Quantity) String() string {
	if q < 0 || int(q) >= len(quantities) {
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
	return q.Label()
}

// DefaultUnits returns the unit codes written when no option is set.
func DefaultUnits() [MaxBands]int16 {
	var u [MaxBands]int16
	for q := range quantities {
		u[q] = quantities[q].defaultUnit
	}
	return u
}
