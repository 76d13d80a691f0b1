package catalog

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/geo"
	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/optional"
	"fleetops/internal/validation"
)

// RouteView is a route with its geometry rendered as GeoJSON.
type RouteView struct {
	models.Route
	Geometry string  `json:"Geometry,omitempty"`
	LengthKM float64 `json:"LengthKM,omitempty"`
}

func toRouteView(r models.Route) RouteView {
	v := RouteView{Route: r}
	if g, err := geo.WKBToGeoJSON(r.Geometry); err == nil {
		v.Geometry = g
	} else {
		logrus.WithError(err).WithField("route_id", r.RouteID).Warn("toRouteView: unreadable geometry")
	}
	if km, err := geo.LineLengthKM(r.Geometry); err == nil {
		v.LengthKM = km
	}
	return v
}

type RouteInput struct {
	RouteName   string   `json:"RouteName" binding:"notblank"`
	Description string   `json:"Description"`
	Geometry    string   `json:"Geometry"`
	StopIDs     []string `json:"StopIDs"`
}

type RoutePatch struct {
	RouteName   *string                `json:"RouteName"`
	Description *string                `json:"Description"`
	Geometry    optional.Value[string] `json:"Geometry"`
}

func parseGeometry(raw string) ([]byte, error) {
	b, err := geo.GeoJSONToWKB(raw)
	if err != nil {
		return nil, apperr.ValidationError{Field: "Geometry", Msg: "Invalid geometry: " + err.Error(), Err: err}
	}
	return b, nil
}

// CreateRoute stores a route and its ordered stops.
func (s *Service) CreateRoute(ctx context.Context, in RouteInput, actor string) (*RouteView, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.RouteName)
	wkbGeom, err := parseGeometry(in.Geometry)
	if err != nil {
		return nil, err
	}
	route := models.Route{
		RouteID:     ids.New(ids.Route),
		RouteName:   name,
		Description: in.Description,
		Geometry:    wkbGeom,
	}
	route.Stamp(actor)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&route).Error; err != nil {
			return apperr.FromDB("route", route.RouteID, err)
		}
		return replaceStops(tx, route.RouteID, in.StopIDs)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.EntityRoutes, cache.EntityDashboard)
	return s.GetRoute(ctx, route.RouteID)
}

func (s *Service) UpdateRoute(ctx context.Context, id string, p RoutePatch, actor string) (*RouteView, error) {
	updates := map[string]interface{}{"updated_by": actor}
	if p.RouteName != nil {
		name := strings.TrimSpace(*p.RouteName)
		if name == "" {
			return nil, apperr.ValidationError{Field: "RouteName", Msg: "cannot be empty"}
		}
		updates["route_name"] = name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Geometry.Set {
		raw := ""
		if p.Geometry.Ptr != nil {
			raw = *p.Geometry.Ptr
		}
		b, err := parseGeometry(raw)
		if err != nil {
			return nil, err
		}
		updates["geometry"] = b
	}
	res := s.db.WithContext(ctx).Model(&models.Route{}).
		Where("route_id = ? AND is_deleted = ?", id, false).Updates(updates)
	if res.Error != nil {
		return nil, apperr.FromDB("route", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("route", id)
	}
	s.invalidate(ctx, cache.EntityRoutes, cache.EntityAssignments)
	return s.GetRoute(ctx, id)
}

// ReplaceRouteStops swaps the route's stop list for stopIDs, in order.
func (s *Service) ReplaceRouteStops(ctx context.Context, id string, stopIDs []string, actor string) (*RouteView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.First(&route, "route_id = ? AND is_deleted = ?", id, false).Error; err != nil {
			return apperr.FromDB("route", id, err)
		}
		if err := replaceStops(tx, id, stopIDs); err != nil {
			return err
		}
		return tx.Model(&route).Update("updated_by", actor).Error
	})
	if err != nil {
		return nil, apperr.FromDB("route", id, err)
	}
	s.invalidate(ctx, cache.EntityRoutes, cache.EntityAssignments)
	return s.GetRoute(ctx, id)
}

// DeleteRoute soft-deletes a route no live assignment uses.
func (s *Service) DeleteRoute(ctx context.Context, id, actor string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.BusAssignment{}).
			Where("route_id = ? AND is_deleted = ?", id, false).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("route", "route is still used by bus assignments")
		}
		res := tx.Model(&models.Route{}).Where("route_id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{"is_deleted": true, "updated_by": actor})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("route", id)
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB("route", id, err)
	}
	s.invalidate(ctx, cache.EntityRoutes, cache.EntityDashboard)
	return nil
}

func (s *Service) GetRoute(ctx context.Context, id string) (*RouteView, error) {
	var r models.Route
	if err := withStops(s.db.WithContext(ctx)).First(&r, "route_id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, apperr.FromDB("route", id, err)
	}
	v := toRouteView(r)
	return &v, nil
}

// ListRoutes returns every live route, read through the cache.
func (s *Service) ListRoutes(ctx context.Context) ([]RouteView, error) {
	return cache.ReadThrough(ctx, s.cache, cache.NewKey(cache.EntityRoutes), func(ctx context.Context) ([]RouteView, error) {
		var routes []models.Route
		if err := withStops(s.db.WithContext(ctx)).Where("is_deleted = ?", false).Order("route_name").Find(&routes).Error; err != nil {
			return nil, apperr.FromDB("route", "", err)
		}
		out := make([]RouteView, len(routes))
		for i, r := range routes {
			out[i] = toRouteView(r)
		}
		return out, nil
	})
}

func replaceStops(tx *gorm.DB, routeID string, stopIDs []string) error {
	seen := map[string]bool{}
	for _, id := range stopIDs {
		if seen[id] {
			return apperr.ValidationError{Field: "StopIDs", Msg: "stop " + id + " is listed twice"}
		}
		seen[id] = true
	}
	if len(stopIDs) > 0 {
		var n int64
		if err := tx.Model(&models.Stop{}).Where("stop_id IN ? AND is_deleted = ?", stopIDs, false).Count(&n).Error; err != nil {
			return apperr.FromDB("stop", "", err)
		}
		if int(n) != len(stopIDs) {
			return apperr.NotFound("stop", "")
		}
	}
	if err := tx.Where("route_id = ?", routeID).Delete(&models.RouteStop{}).Error; err != nil {
		return apperr.FromDB("route stop", "", err)
	}
	for i, stopID := range stopIDs {
		rs := models.RouteStop{
			RouteStopID: ids.New(ids.RouteStop),
			RouteID:     routeID,
			StopID:      stopID,
			StopOrder:   i + 1,
		}
		if err := tx.Omit(clause.Associations).Create(&rs).Error; err != nil {
			return apperr.FromDB("route stop", rs.RouteStopID, err)
		}
	}
	return nil
}

func withStops(db *gorm.DB) *gorm.DB {
	return db.Preload("RouteStops", func(db *gorm.DB) *gorm.DB {
		return db.Order("stop_order ASC")
	}).Preload("RouteStops.Stop")
}
