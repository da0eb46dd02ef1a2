package engine

import (
	"fmt"

	"git.fiblab.net/sim/transit-catalogue/catalogue"
	"git.fiblab.net/sim/transit-catalogue/router"
	"git.fiblab.net/sim/transit-catalogue/snapshot"
	"github.com/samber/lo"
)

// Unbuilt 只支持录入数据，Build之后失效
// 录入出错后不再接受数据，Build返回该错误
type Unbuilt struct {
	cat   *catalogue.Catalogue
	spent bool
	err   error // 第一个录入错误
}

func NewUnbuilt() *Unbuilt {
	return &Unbuilt{cat: catalogue.New()}
}

func (u *Unbuilt) check() error {
	if u.spent {
		return ErrAlreadyBuilt
	}
	if u.err != nil {
		return fmt.Errorf("%w: %w", ErrIngestFailed, u.err)
	}
	return nil
}

func (u *Unbuilt) fail(err error) error {
	if err != nil {
		u.err = err
	}
	return err
}

func (u *Unbuilt) AddStop(name string, lat, lng float64) error {
	if err := u.check(); err != nil {
		return err
	}
	_, err := u.cat.AddStop(name, lat, lng)
	return u.fail(err)
}

func (u *Unbuilt) AddDistance(from, to string, meters int) error {
	if err := u.check(); err != nil {
		return err
	}
	return u.fail(u.cat.AddDistance(from, to, meters))
}

func (u *Unbuilt) AddBusLine(name string, stops []string, circular bool) error {
	if err := u.check(); err != nil {
		return err
	}
	_, err := u.cat.AddBusLine(name, stops, circular)
	return u.fail(err)
}

// Build 建立公交图，返回只读的Ready
func (u *Unbuilt) Build(settings router.Settings) (*Ready, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	r, err := router.New(u.cat, settings)
	if err != nil {
		return nil, err
	}
	u.spent = true
	log.Infof("built catalogue: %d stops, %d bus lines", u.cat.StopCount(), u.cat.LineCount())
	return &Ready{cat: u.cat, router: r}, nil
}

// Ready 只支持查询，可被多个goroutine同时使用
type Ready struct {
	cat    *catalogue.Catalogue
	router *router.Router
}

func Load(path string) (*Ready, error) {
	s, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	return &Ready{cat: s.Catalogue, router: s.Router}, nil
}

func (r *Ready) Save(path string) error {
	return snapshot.Save(path, &snapshot.State{Catalogue: r.cat, Router: r.router})
}

func (r *Ready) GetLineStats(name string) (catalogue.BusStat, bool) {
	return r.cat.GetLineStats(name)
}

func (r *Ready) GetLinesThroughStop(name string) ([]string, bool) {
	return r.cat.GetLinesThroughStop(name)
}

func (r *Ready) BuildItinerary(from, to string) (router.Itinerary, bool) {
	return r.router.BuildItinerary(from, to)
}

func (r *Ready) Settings() router.Settings {
	return r.router.Settings()
}

// 按id顺序
func (r *Ready) StopNames() []string {
	return lo.Map(r.cat.Stops(), func(s *catalogue.Stop, _ int) string {
		return s.Name
	})
}
