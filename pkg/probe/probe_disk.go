package probe

import (
	"context"
	"fmt"
	"syscall"

	units "github.com/docker/go-units"
	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type diskProbe struct {
	path    string
	minFree int64
}

func NewDiskProbe(cfg *config.Disk) (*diskProbe, error) {
	path := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Path), "/", "path", "disk")
	minFreeStr := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.MinFree), "1GB", "minFree", "disk")

	minFree, err := units.FromHumanSize(minFreeStr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid minFree value %q", minFreeStr)
	}

	return &diskProbe{path: path, minFree: minFree}, nil
}

func (d *diskProbe) Exec(context.Context) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(d.path, &stat); err != nil {
		return errors.Wrapf(err, "failed to stat %s", d.path)
	}

	free := int64(stat.Bavail) * int64(stat.Bsize)
	if free < d.minFree {
		return fmt.Errorf("%s free on %s, below minimum of %s", units.HumanSize(float64(free)), d.path, units.HumanSize(float64(d.minFree)))
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "disk", "status": "alive", "path": d.path, "free": units.HumanSize(float64(free))}).Debug()

	return nil
}
