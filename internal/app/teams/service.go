package teams

import "github.com/preston-bernstein/gamecast-service/internal/domain/teams"

// Directory defines the contract for listing and resolving teams.
type Directory interface {
	Teams(league string) []teams.Team
	Resolve(league, abbreviation string) (teams.Team, bool)
}

// Service exposes the team directory used for attribution and card branding.
type Service struct {
	dir Directory
}

// NewService constructs a Service with the provided Directory.
func NewService(dir Directory) *Service {
	return &Service{dir: dir}
}

// Teams returns a league's teams, or every team for an empty league.
func (s *Service) Teams(league string) []teams.Team {
	list := s.dir.Teams(league)
	if list == nil {
		return []teams.Team{}
	}
	return list
}

// TeamByAbbreviation resolves a team within a league.
func (s *Service) TeamByAbbreviation(league, abbreviation string) (teams.Team, bool) {
	return s.dir.Resolve(league, abbreviation)
}
