package shell

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/spacetime/internal/geo"
	"github.com/OCAP2/spacetime/internal/timemap"
)

const resultOK = "ok"

func (s *Service) commands() []command {
	return []command{
		// writes
		{name: "insert", usage: "insert <entity> <x,y[,z]>", write: true, run: s.insert},
		{name: "insert-geo", usage: "insert-geo <entity> <lon,lat[,elev]>", write: true, run: s.insertGeo},
		{name: "remove", usage: "remove <entity>", write: true, run: s.remove},
		{name: "remove-now", usage: "remove-now <entity>", write: true, run: s.removeNow},
		{name: "remove-at", usage: "remove-at <time> <entity>", write: true, run: s.removeAt},
		{name: "clear", usage: "clear <x,y[,z]>", write: true, run: s.clear},
		{name: "clear-at", usage: "clear-at <time> <x,y[,z]>", write: true, run: s.clearAt},
		{name: "step", usage: "step", write: true, run: s.step},

		// point lookups
		{name: "at", usage: "at <x,y[,z]>", run: s.at},
		{name: "at-time", usage: "at-time <time> <x,y[,z]>", run: s.atTime},
		{name: "locations", usage: "locations <entity>", run: s.locations},
		{name: "locations-at", usage: "locations-at <time> <entity>", run: s.locationsAt},
		{name: "wkt", usage: "wkt <entity> [time]", run: s.wkt},

		// history
		{name: "timeline", usage: "timeline <entity>", run: s.timeline},
		{name: "occurrences", usage: "occurrences <x,y[,z]> <entity>", run: s.occurrences},
		{name: "oldest-after", usage: "oldest-after <entity> <time>", run: s.oldestAfter},
		{name: "latest-after", usage: "latest-after <entity> <time>", run: s.latestAfter},
		{name: "latest-before", usage: "latest-before <entity> <time>", run: s.latestBefore},
		{name: "oldest-locations", usage: "oldest-locations <entity> <time>", run: s.oldestLocations},
		{name: "newest-locations", usage: "newest-locations <entity> <time>", run: s.newestLocations},

		// relations
		{name: "direction", usage: "direction <time> <observer> <target>", run: s.direction},
		{name: "distance", usage: "distance <time> <a> <b>", run: s.distance},
		{name: "nearness", usage: "nearness <time> <observer> <target> <reference>", run: s.nearness},
		{name: "relations", usage: "relations <time> <observer> <target> <reference>", run: s.relations},

		// window
		{name: "now", usage: "now", run: s.now},
		{name: "times", usage: "times", run: s.times},
		{name: "autostep", usage: "autostep on|off", run: s.autostep},
		{name: "status", usage: "status", run: s.status},
	}
}

func (s *Service) timeArg(arg string) (time.Time, error) {
	return parseTime(arg, s.ix.CurrentTime)
}

func (s *Service) insert(args []string) (string, error) {
	if err := expect(args, 2, "insert <entity> <x,y[,z]>"); err != nil {
		return "", err
	}
	p, err := parsePosition(args[1])
	if err != nil {
		return "", err
	}
	s.ix.InsertAtom(p, args[0])
	return resultOK, nil
}

func (s *Service) insertGeo(args []string) (string, error) {
	if err := expect(args, 2, "insert-geo <entity> <lon,lat[,elev]>"); err != nil {
		return "", err
	}
	p, err := geo.ParseLonLat(args[1])
	if err != nil {
		return "", err
	}
	s.ix.InsertAtom(p, args[0])
	return p.String(), nil
}

func (s *Service) remove(args []string) (string, error) {
	if err := expect(args, 1, "remove <entity>"); err != nil {
		return "", err
	}
	s.ix.RemoveAtom(args[0])
	return resultOK, nil
}

func (s *Service) removeNow(args []string) (string, error) {
	if err := expect(args, 1, "remove-now <entity>"); err != nil {
		return "", err
	}
	s.ix.RemoveAtomAtCurrentTime(args[0])
	return resultOK, nil
}

func (s *Service) removeAt(args []string) (string, error) {
	if err := expect(args, 2, "remove-at <time> <entity>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	s.ix.RemoveAtomAtTime(t, args[1])
	return resultOK, nil
}

func (s *Service) clear(args []string) (string, error) {
	if err := expect(args, 1, "clear <x,y[,z]>"); err != nil {
		return "", err
	}
	p, err := parsePosition(args[0])
	if err != nil {
		return "", err
	}
	s.ix.RemoveAtomsAtLocation(p)
	return resultOK, nil
}

func (s *Service) clearAt(args []string) (string, error) {
	if err := expect(args, 2, "clear-at <time> <x,y[,z]>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	p, err := parsePosition(args[1])
	if err != nil {
		return "", err
	}
	s.ix.RemoveAtTimeByLocation(t, p)
	return resultOK, nil
}

func (s *Service) step(args []string) (string, error) {
	if err := expect(args, 0, "step"); err != nil {
		return "", err
	}
	return formatTime(s.ix.Advance()), nil
}

func (s *Service) at(args []string) (string, error) {
	if err := expect(args, 1, "at <x,y[,z]>"); err != nil {
		return "", err
	}
	p, err := parsePosition(args[0])
	if err != nil {
		return "", err
	}
	return entityOrEmpty(s.ix.AtomAtLocation(p)), nil
}

func (s *Service) atTime(args []string) (string, error) {
	if err := expect(args, 2, "at-time <time> <x,y[,z]>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	p, err := parsePosition(args[1])
	if err != nil {
		return "", err
	}
	e, found := s.ix.AtomAtTimeByLocation(t, p)
	if !found {
		return "not found", nil
	}
	return entityOrEmpty(e), nil
}

func (s *Service) locations(args []string) (string, error) {
	if err := expect(args, 1, "locations <entity>"); err != nil {
		return "", err
	}
	return formatPositions(s.ix.LocationsOfAtom(args[0])), nil
}

func (s *Service) locationsAt(args []string) (string, error) {
	if err := expect(args, 2, "locations-at <time> <entity>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	return formatPositions(s.ix.LocationsOfAtomAtTime(t, args[1])), nil
}

func (s *Service) wkt(args []string) (string, error) {
	switch len(args) {
	case 1:
		return geo.LocationsWKT(s.ix.LocationsOfAtom(args[0])), nil
	case 2:
		t, err := s.timeArg(args[1])
		if err != nil {
			return "", err
		}
		return geo.LocationsWKT(s.ix.LocationsOfAtomAtTime(t, args[0])), nil
	default:
		return "", fmt.Errorf("%w: wkt <entity> [time]", ErrUsage)
	}
}

func (s *Service) timeline(args []string) (string, error) {
	if err := expect(args, 1, "timeline <entity>"); err != nil {
		return "", err
	}
	return formatTimes(s.ix.Timeline(args[0])), nil
}

func (s *Service) occurrences(args []string) (string, error) {
	if err := expect(args, 2, "occurrences <x,y[,z]> <entity>"); err != nil {
		return "", err
	}
	p, err := parsePosition(args[0])
	if err != nil {
		return "", err
	}
	return formatTimes(s.ix.OccurrencesAt(p, args[1])), nil
}

func (s *Service) oldestAfter(args []string) (string, error) {
	return s.boundQuery(args, "oldest-after <entity> <time>", s.ix.OldestAtOrAfter)
}

func (s *Service) latestAfter(args []string) (string, error) {
	return s.boundQuery(args, "latest-after <entity> <time>", s.ix.LatestAtOrAfter)
}

func (s *Service) latestBefore(args []string) (string, error) {
	return s.boundQuery(args, "latest-before <entity> <time>", s.ix.LatestAtOrBefore)
}

func (s *Service) boundQuery(args []string, usage string, q func(string, time.Time) (time.Time, bool)) (string, error) {
	if err := expect(args, 2, usage); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[1])
	if err != nil {
		return "", err
	}
	found, present := q(args[0], t)
	if !present {
		return "not found", nil
	}
	return formatTime(found), nil
}

func (s *Service) oldestLocations(args []string) (string, error) {
	if err := expect(args, 2, "oldest-locations <entity> <time>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[1])
	if err != nil {
		return "", err
	}
	return formatPositions(s.ix.OldestLocations(args[0], t)), nil
}

func (s *Service) newestLocations(args []string) (string, error) {
	if err := expect(args, 2, "newest-locations <entity> <time>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[1])
	if err != nil {
		return "", err
	}
	return formatPositions(s.ix.NewestLocations(args[0], t)), nil
}

func (s *Service) direction(args []string) (string, error) {
	if err := expect(args, 3, "direction <time> <observer> <target>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	d, found := s.ix.Direction(t, args[1], args[2])
	if !found {
		return "unknown", nil
	}
	return d.String(), nil
}

func (s *Service) distance(args []string) (string, error) {
	if err := expect(args, 3, "distance <time> <a> <b>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	d := s.ix.Distance(t, args[1], args[2])
	if d == timemap.UnknownDistance {
		return "unknown", nil
	}
	return strconv.FormatFloat(d, 'g', -1, 64), nil
}

func (s *Service) nearness(args []string) (string, error) {
	if err := expect(args, 4, "nearness <time> <observer> <target> <reference>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	return s.ix.AngularNearness(t, args[1], args[2], args[3]).String(), nil
}

func (s *Service) relations(args []string) (string, error) {
	if err := expect(args, 4, "relations <time> <observer> <target> <reference>"); err != nil {
		return "", err
	}
	t, err := s.timeArg(args[0])
	if err != nil {
		return "", err
	}
	r := s.ix.SpatialRelations(t, args[1], args[2], args[3])
	return fmt.Sprintf("front=%s lateral=%s vertical=%s", r.Front, r.Lateral, r.Vertical), nil
}

func (s *Service) now(args []string) (string, error) {
	if err := expect(args, 0, "now"); err != nil {
		return "", err
	}
	return formatTime(s.ix.CurrentTime()), nil
}

func (s *Service) times(args []string) (string, error) {
	if err := expect(args, 0, "times"); err != nil {
		return "", err
	}
	return formatTimes(s.ix.Times()), nil
}

func (s *Service) autostep(args []string) (string, error) {
	if err := expect(args, 1, "autostep on|off"); err != nil {
		return "", err
	}
	switch strings.ToLower(args[0]) {
	case "on":
		s.ix.SetAutoStep(true)
	case "off":
		s.ix.SetAutoStep(false)
	default:
		return "", fmt.Errorf("%w: autostep on|off", ErrUsage)
	}
	return resultOK, nil
}

func (s *Service) status(args []string) (string, error) {
	if err := expect(args, 0, "status"); err != nil {
		return "", err
	}
	st := s.ix.Stats()
	return fmt.Sprintf(
		"capacity=%d retained=%d occupied=%d oldest=%s current=%s advances=%d evictions=%d autostep=%t",
		st.Capacity, st.Retained, st.OccupiedCells,
		formatTime(st.Oldest), formatTime(st.Current),
		st.Advances, st.Evictions, st.AutoStep,
	), nil
}

func entityOrEmpty(e string) string {
	if e == "" {
		return "empty"
	}
	return e
}
