package cli

import (
	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

// debugService adapts the pipeline to the read-only debug listener.
type debugService struct {
	p *pipeline
}

func (d debugService) Status() types.StatusResponse {
	return d.p.sess.Status()
}

func (d debugService) Models() []types.Model {
	return append([]types.Model(nil), d.p.models...)
}

func (d debugService) Ready() bool {
	return d.p.cache.Status().Phase == modelcache.PhaseReady
}
