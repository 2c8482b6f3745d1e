package providers

import (
	"github.com/gookit/validate"

	"github.com/h-wang94/terraforming-mars/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (v *CnfValidator) Validate() error {
	vd := validate.Struct(v.conf)
	if !vd.Validate() {
		return vd.Errors.OneError()
	}
	return nil
}
