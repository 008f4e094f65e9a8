package processor

import (
	"fmt"
	"log"

	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/utils"
)

// NewBuilderConfig compiles the formulas and masks of a namespace
// configuration and binds them to a reader registry over env.  The
// format tables come from the configuration's formats file when set.
func NewBuilderConfig(conf *utils.Config, env *reader.Env) (*BuilderConfig, error) {
	if len(conf.FormatsFile) > 0 {
		tables, err := reader.LoadTables(conf.FormatsFile)
		if err != nil {
			return nil, err
		}
		env.Tables = tables
	}
	reg, err := reader.NewRegistry(env)
	if err != nil {
		return nil, err
	}

	cfg := &BuilderConfig{
		Registry: reg,
		Formulas: make(map[string]*Formula, len(conf.Formulas)),
		Masks:    make(map[string]*MaskDef, len(conf.Masks)),
		Verbose:  env.Verbose,
	}
	for _, f := range conf.Formulas {
		formula, err := NewFormula(f)
		if err != nil {
			return nil, fmt.Errorf("formula %s: %v", f.Name, err)
		}
		cfg.Formulas[f.Name] = formula
	}
	for _, m := range conf.Masks {
		d, err := NewMaskDef(m)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %v", m.ID, err)
		}
		cfg.Masks[m.ID] = d
	}
	if env.Verbose {
		log.Printf("builder config: %d product types, %d formulas, %d masks", len(reg.Tables().ProductTypes()), len(cfg.Formulas), len(cfg.Masks))
	}
	return cfg, nil
}
