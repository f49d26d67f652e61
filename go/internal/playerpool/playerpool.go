// Package playerpool loads draftable players from pool or projection files.
//
// A pool file is CSV with the header id,name,position,team,adp,
// projected_points,bye_week; only name and position are required. A
// projections file is CSV or JSON with name, position, games,
// fantasy_points and position_rank. Players without an ADP are ranked
// after every player that has one, best projection first.
package playerpool

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrNoPlayers = errors.New("no draftable players")

// Projection is one row of a projections file
type Projection struct {
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	Games         int     `json:"games"`
	FantasyPoints float64 `json:"fantasy_points"`
	PositionRank  int     `json:"position_rank"`
}

// LoadFile reads a .csv or .json file
func LoadFile(path string) ([]models.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".csv":
		return LoadCSV(f)
	}
	return nil, fmt.Errorf("unsupported player file %q", path)
}

// LoadJSON reads a JSON array of projections
func LoadJSON(r io.Reader) ([]models.Player, error) {
	var rows []Projection
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode projections: %w", err)
	}
	return fromProjections(rows)
}

// LoadCSV reads either file layout, chosen by the header
func LoadCSV(r io.Reader) ([]models.Player, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "position"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if _, ok := cols["fantasy_points"]; ok {
		if _, hasID := cols["id"]; !hasID {
			return projectionsFromCSV(cols, records)
		}
	}
	return poolFromCSV(cols, records)
}

type row struct {
	cols   map[string]int
	record []string
	line   int
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) float(name string) (*float64, error) {
	s := r.get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", r.line, name, err)
	}
	return &v, nil
}

func (r row) int(name string) (*int, error) {
	s := r.get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", r.line, name, err)
	}
	return &v, nil
}

func poolFromCSV(cols map[string]int, records [][]string) ([]models.Player, error) {
	var players []models.Player
	for i, rec := range records {
		r := row{cols: cols, record: rec, line: i + 2}
		pos, err := models.ParsePosition(r.get("position"))
		if err != nil {
			log.Debug().Int("line", r.line).Str("position", r.get("position")).Msg("skipping player")
			continue
		}
		p := models.Player{
			ID:       r.get("id"),
			Name:     r.get("name"),
			Position: pos,
			Team:     r.get("team"),
		}
		if p.ID == "" {
			p.ID = PlayerID(p.Name, pos)
		}
		adp, err := r.float("adp")
		if err != nil {
			return nil, err
		}
		if adp != nil {
			p.ADP = *adp
		}
		if p.ProjectedPoints, err = r.float("projected_points"); err != nil {
			return nil, err
		}
		if p.ByeWeek, err = r.int("bye_week"); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return finish(players, nil)
}

func projectionsFromCSV(cols map[string]int, records [][]string) ([]models.Player, error) {
	rows := make([]Projection, 0, len(records))
	for i, rec := range records {
		r := row{cols: cols, record: rec, line: i + 2}
		pts, err := r.float("fantasy_points")
		if err != nil {
			return nil, err
		}
		games, err := r.int("games")
		if err != nil {
			return nil, err
		}
		rank, err := r.int("position_rank")
		if err != nil {
			return nil, err
		}
		p := Projection{Name: r.get("name"), Position: r.get("position")}
		if pts != nil {
			p.FantasyPoints = *pts
		}
		if games != nil {
			p.Games = *games
		}
		if rank != nil {
			p.PositionRank = *rank
		}
		rows = append(rows, p)
	}
	return fromProjections(rows)
}

func fromProjections(rows []Projection) ([]models.Player, error) {
	players := make([]models.Player, 0, len(rows))
	ranks := make(map[string]int, len(rows))
	for _, r := range rows {
		pos, err := models.ParsePosition(r.Position)
		if err != nil || r.FantasyPoints <= 0 {
			continue
		}
		pts := r.FantasyPoints
		p := models.Player{
			ID:              PlayerID(r.Name, pos),
			Name:            strings.TrimSpace(r.Name),
			Position:        pos,
			ProjectedPoints: &pts,
		}
		ranks[p.ID] = r.PositionRank
		players = append(players, p)
	}
	return finish(players, ranks)
}

// finish rejects duplicate ids and ranks players that have no ADP
func finish(players []models.Player, positionRanks map[string]int) ([]models.Player, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	seen := make(map[string]bool, len(players))
	maxADP := 0.0
	var unranked []int
	for i, p := range players {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
		if p.ADP > 0 {
			maxADP = max(maxADP, p.ADP)
		} else {
			unranked = append(unranked, i)
		}
	}

	sort.SliceStable(unranked, func(a, b int) bool {
		pa, pb := players[unranked[a]], players[unranked[b]]
		fa, fb := points(pa), points(pb)
		if fa != fb {
			return fa > fb
		}
		return positionRanks[pa.ID] < positionRanks[pb.ID]
	})
	for n, i := range unranked {
		players[i].ADP = maxADP + float64(n+1)
	}
	return players, nil
}

func points(p models.Player) float64 {
	if p.ProjectedPoints == nil {
		return -1
	}
	return *p.ProjectedPoints
}

// PlayerID derives a stable id from a name and position, e.g.
// "Ja'Marr Chase", WR -> "jamarr-chase-wr".
func PlayerID(name string, pos models.Position) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '\'' || r == '.':
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	return id + "-" + strings.ToLower(string(pos))
}
