package lcp

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-georaster/raster"
)

// CreateOptions are the landscape creation options. Empty fields take the
// defaults; unit fields accept the same values as the KEY=VALUE form.
type CreateOptions struct {
	ElevationUnit   string `yaml:"elevation_unit" mapstructure:"elevation_unit" validate:"omitempty,lcpunit=ELEVATION_UNIT"`
	SlopeUnit       string `yaml:"slope_unit" mapstructure:"slope_unit" validate:"omitempty,lcpunit=SLOPE_UNIT"`
	AspectUnit      string `yaml:"aspect_unit" mapstructure:"aspect_unit" validate:"omitempty,lcpunit=ASPECT_UNIT"`
	FuelModelOption string `yaml:"fuel_model_option" mapstructure:"fuel_model_option" validate:"omitempty,lcpunit=FUEL_MODEL_OPTION"`
	CanopyCovUnit   string `yaml:"canopy_cov_unit" mapstructure:"canopy_cov_unit" validate:"omitempty,lcpunit=CANOPY_COV_UNIT"`
	CanopyHtUnit    string `yaml:"canopy_ht_unit" mapstructure:"canopy_ht_unit" validate:"omitempty,lcpunit=CANOPY_HT_UNIT"`
	CBHUnit         string `yaml:"cbh_unit" mapstructure:"cbh_unit" validate:"omitempty,lcpunit=CBH_UNIT"`
	CBDUnit         string `yaml:"cbd_unit" mapstructure:"cbd_unit" validate:"omitempty,lcpunit=CBD_UNIT"`
	DuffUnit        string `yaml:"duff_unit" mapstructure:"duff_unit" validate:"omitempty,lcpunit=DUFF_UNIT"`

	// CalculateStats and ClassifyData default to true. Classification
	// needs statistics and turns them back on.
	CalculateStats *bool `yaml:"calculate_stats" mapstructure:"calculate_stats"`
	ClassifyData   *bool `yaml:"classify_data" mapstructure:"classify_data"`

	// LinearUnit is SET_FROM_SRS (the default), METER, FOOT or KILOMETER.
	LinearUnit string `yaml:"linear_unit" mapstructure:"linear_unit" validate:"omitempty,linearunit"`

	// Latitude overrides the latitude derived from the raster center.
	Latitude *int `yaml:"latitude" mapstructure:"latitude" validate:"omitempty,min=-90,max=90"`

	Description *string `yaml:"description" mapstructure:"description"`
}

// DefaultDescription is written when no description is given.
const DefaultDescription = "Landscape file written by go-georaster."

const linearUnitFromSRS = "SET_FROM_SRS"

// unitOptions maps each unit option name to its quantity and field.
var unitOptions = []struct {
	q     Quantity
	field func(*CreateOptions) *string
}{
	{Elevation, func(o *CreateOptions) *string { return &o.ElevationUnit }},
	{Slope, func(o *CreateOptions) *string { return &o.SlopeUnit }},
	{Aspect, func(o *CreateOptions) *string { return &o.AspectUnit }},
	{FuelModel, func(o *CreateOptions) *string { return &o.FuelModelOption }},
	{CanopyCover, func(o *CreateOptions) *string { return &o.CanopyCovUnit }},
	{CanopyHeight, func(o *CreateOptions) *string { return &o.CanopyHtUnit }},
	{CanopyBaseHeight, func(o *CreateOptions) *string { return &o.CBHUnit }},
	{CanopyBulkDensity, func(o *CreateOptions) *string { return &o.CBDUnit }},
	{Duff, func(o *CreateOptions) *string { return &o.DuffUnit }},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("lcpunit", func(fl validator.FieldLevel) bool {
		q, ok := quantityByUnitKey(fl.Param())
		if !ok {
			return false
		}
		_, ok = q.matchUnit(fl.Field().String())
		return ok
	})
	if err != nil {
		panic(err)
	}
	err = v.RegisterValidation("linearunit", func(fl validator.FieldLevel) bool {
		_, _, ok := parseLinearUnit(fl.Field().String())
		return ok
	})
	if err != nil {
		panic(err)
	}
	return v
}

func quantityByUnitKey(key string) (Quantity, bool) {
	for q := range quantities {
		if quantities[q].unitKey == key {
			return Quantity(q), true
		}
	}
	return 0, false
}

// matchUnit maps an option value to a unit code, ignoring case.
func (q Quantity) matchUnit(value string) (int16, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, c := range q.info().choices {
		for _, name := range c.names {
			if prefix, ok := strings.CutSuffix(name, "*"); ok {
				if strings.HasPrefix(v, prefix) {
					return c.code, true
				}
			} else if v == name {
				return c.code, true
			}
		}
	}
	return 0, false
}

// parseLinearUnit returns the unit of a LINEAR_UNIT value, or fromSRS
// when the unit is to be taken from the spatial reference.
func parseLinearUnit(value string) (unit LinearUnit, fromSRS, ok bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch {
	case v == linearUnitFromSRS:
		return Meters, true, true
	case strings.HasPrefix(v, "METER"):
		return Meters, false, true
	case v == "FOOT" || v == "FEET":
		return Feet, false, true
	case strings.HasPrefix(v, "KILOMETER"):
		return Kilometers, false, true
	}
	return 0, false, false
}

// Validate checks every field. Failures wrap raster.ErrConfig.
func (o *CreateOptions) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", raster.ErrConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid value (%v) for %s", fe.Value(), fe.Field()))
	}
	return fmt.Errorf("%w: %s", raster.ErrConfig, strings.Join(msgs, "; "))
}

// ParseCreateOptions reads KEY=VALUE option strings. Keys are matched
// without regard to case.
func ParseCreateOptions(kv []string) (CreateOptions, error) {
	var o CreateOptions
	err := o.Apply(kv)
	return o, err
}

// Apply sets KEY=VALUE option strings on top of o and validates the result.
func (o *CreateOptions) Apply(kv []string) error {
	for _, item := range kv {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("%w: option %q is not KEY=VALUE", raster.ErrConfig, item)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if err := o.set(key, value); err != nil {
			return err
		}
	}
	return o.Validate()
}

func (o *CreateOptions) set(key, value string) error {
	for _, u := range unitOptions {
		if u.q.UnitKey() == key {
			*u.field(o) = value
			return nil
		}
	}
	switch key {
	case "CALCULATE_STATS":
		b := parseBool(value)
		o.CalculateStats = &b
	case "CLASSIFY_DATA":
		b := parseBool(value)
		o.ClassifyData = &b
	case "LINEAR_UNIT":
		o.LinearUnit = value
	case "LATITUDE":
		lat, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: invalid value (%s) for LATITUDE", raster.ErrConfig, value)
		}
		o.Latitude = &lat
	case "DESCRIPTION":
		o.Description = &value
	default:
		return fmt.Errorf("%w: unknown creation option %s", raster.ErrConfig, key)
	}
	return nil
}

// parseBool treats NO, FALSE, OFF and 0 as false and anything else as true.
func parseBool(v string) bool {
	return !slices.Contains([]string{"NO", "FALSE", "OFF", "0"}, strings.ToUpper(strings.TrimSpace(v)))
}

// LoadCreateOptions decodes options from YAML.
func LoadCreateOptions(r io.Reader) (CreateOptions, error) {
	var o CreateOptions
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return o, fmt.Errorf("%w: decoding options: %w", raster.ErrConfig, err)
	}
	return o, o.Validate()
}

// resolvedOptions are creation options reduced to header values.
type resolvedOptions struct {
	units         [MaxBands]int16
	stats         bool
	classify      bool
	linearUnit    LinearUnit
	linearFromSRS bool
	latitude      *int
	description   string
}

// resolve applies defaults for the given layout. Unit options of absent
// quantities are ignored.
func (o *CreateOptions) resolve(layout HeaderLayout, logger zerolog.Logger) (resolvedOptions, error) {
	if err := o.Validate(); err != nil {
		return resolvedOptions{}, err
	}
	r := resolvedOptions{
		units:       DefaultUnits(),
		stats:       o.CalculateStats == nil || *o.CalculateStats,
		classify:    o.ClassifyData == nil || *o.ClassifyData,
		latitude:    o.Latitude,
		description: DefaultDescription,
	}
	for _, u := range unitOptions {
		v := *u.field(o)
		if v == "" || !slices.Contains(layout.Quantities, u.q) {
			continue
		}
		code, _ := u.q.matchUnit(v)
		r.units[u.q] = code
	}
	if layout.GroundFuels {
		r.units[CoarseWoody] = 1
	}
	if r.classify && !r.stats {
		logger.Warn().Msg("ignoring request to not calculate statistics, because CLASSIFY_DATA is on")
		r.stats = true
	}

	lu := o.LinearUnit
	if lu == "" {
		lu = linearUnitFromSRS
	}
	r.linearUnit, r.linearFromSRS, _ = parseLinearUnit(lu)

	if o.Description != nil {
		r.description = *o.Description
	}
	return r, nil
}

// Option configures Open and CreateCopy. Options that do not apply to an
// operation are ignored.
type Option func(*config)

type config struct {
	access      raster.Access
	strict      bool
	logger      zerolog.Logger
	progress    raster.ProgressFunc
	transformer raster.CoordinateTransformer
	options     CreateOptions
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:      log.Logger,
		progress:    raster.NoProgress,
		transformer: raster.GeographicPassthrough{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAccess sets the access mode of Open. Only raster.ReadOnly is
// supported.
func WithAccess(a raster.Access) Option {
	return func(c *config) {
		c.access = a
	}
}

// WithStrict makes recoverable ambiguities fatal in CreateCopy: a
// non-Int16 source, a missing or scaled linear unit.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithLogger sets the logger receiving warnings and debug messages.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithProgress sets the progress callback of CreateCopy.
func WithProgress(fn raster.ProgressFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.progress = fn
		}
	}
}

// WithTransformer sets the transformer used to derive the latitude of the
// raster center.
func WithTransformer(ct raster.CoordinateTransformer) Option {
	return func(c *config) {
		if ct != nil {
			c.transformer = ct
		}
	}
}

// WithOptions sets the creation options.
func WithOptions(o CreateOptions) Option {
	return func(c *config) {
		c.options = o
	}
}
