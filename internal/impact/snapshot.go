package impact

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

// Snapshot is the current set of impact counters shown on the website.
// All four counters are non-negative; a partial update never zeroes a field.
type Snapshot struct {
	ProjectsCompleted int       `json:"projectsCompleted"`
	HappyClients      int       `json:"happyClients"`
	YearsExperience   int       `json:"yearsExperience"`
	OngoingProjects   int       `json:"ongoingProjects"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

const (
	FieldProjectsCompleted = "projectsCompleted"
	FieldHappyClients      = "happyClients"
	FieldYearsExperience   = "yearsExperience"
	FieldOngoingProjects   = "ongoingProjects"
)

// FieldOrder is the fixed enumeration order used for tie-breaks and for
// applying partial updates.
var FieldOrder = []string{
	FieldProjectsCompleted,
	FieldHappyClients,
	FieldYearsExperience,
	FieldOngoingProjects,
}

func (s Snapshot) Field(name string) int {
	switch name {
	case FieldProjectsCompleted:
		return s.ProjectsCompleted
	case FieldHappyClients:
		return s.HappyClients
	case FieldYearsExperience:
		return s.YearsExperience
	case FieldOngoingProjects:
		return s.OngoingProjects
	default:
		return 0
	}
}

func (s *Snapshot) SetField(name string, value int) {
	switch name {
	case FieldProjectsCompleted:
		s.ProjectsCompleted = value
	case FieldHappyClients:
		s.HappyClients = value
	case FieldYearsExperience:
		s.YearsExperience = value
	case FieldOngoingProjects:
		s.OngoingProjects = value
	}
}

func (s Snapshot) valid() bool {
	return s.ProjectsCompleted >= 0 &&
		s.HappyClients >= 0 &&
		s.YearsExperience >= 0 &&
		s.OngoingProjects >= 0
}

type defaultsFile struct {
	ProjectsCompleted *int `yaml:"projectsCompleted"`
	HappyClients      *int `yaml:"happyClients"`
	YearsExperience   *int `yaml:"yearsExperience"`
	OngoingProjects   *int `yaml:"ongoingProjects"`
}

// LoadDefaults resolves the configured default counters: built-in values,
// overridden by DEFAULT_* environment variables, overridden in turn by the
// optional YAML file named in IMPACT_DEFAULTS_FILE.
func LoadDefaults(log *logger.Logger) Snapshot {
	defaults := Snapshot{
		ProjectsCompleted: utils.GetEnvAsInt("DEFAULT_PROJECTS_COMPLETED", 250, log),
		HappyClients:      utils.GetEnvAsInt("DEFAULT_HAPPY_CLIENTS", 500, log),
		YearsExperience:   utils.GetEnvAsInt("DEFAULT_YEARS_EXPERIENCE", 20, log),
		OngoingProjects:   utils.GetEnvAsInt("DEFAULT_ONGOING_PROJECTS", 15, log),
	}

	path := utils.GetEnv("IMPACT_DEFAULTS_FILE", "", log)
	if path == "" {
		return defaults
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("Could not read impact defaults file, using env defaults", "path", path, "error", err)
		}
		return defaults
	}
	var file defaultsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		if log != nil {
			log.Warn("Could not parse impact defaults file, using env defaults", "path", path, "error", err)
		}
		return defaults
	}
	if file.ProjectsCompleted != nil && *file.ProjectsCompleted >= 0 {
		defaults.ProjectsCompleted = *file.ProjectsCompleted
	}
	if file.HappyClients != nil && *file.HappyClients >= 0 {
		defaults.HappyClients = *file.HappyClients
	}
	if file.YearsExperience != nil && *file.YearsExperience >= 0 {
		defaults.YearsExperience = *file.YearsExperience
	}
	if file.OngoingProjects != nil && *file.OngoingProjects >= 0 {
		defaults.OngoingProjects = *file.OngoingProjects
	}
	return defaults
}
