package domain

// Career levels mirror the career_level enum of the profiles table.
const (
	CareerLevelEntry     = "entry"
	CareerLevelMid       = "mid"
	CareerLevelSenior    = "senior"
	CareerLevelExecutive = "executive"
)

// Skill types mirror the skill_type enum.
const (
	SkillTypeTechnical = "technical"
	SkillTypeSoft      = "soft"
	SkillTypeLanguage  = "language"
)

type Profile struct {
	ID                  string   `json:"id" mapstructure:"id"`
	FullName            string   `json:"full_name,omitempty" mapstructure:"full_name"`
	Location            string   `json:"location,omitempty" mapstructure:"location"`
	CareerLevel         string   `json:"career_level,omitempty" mapstructure:"career_level"`
	SalaryMin           *float64 `json:"salary_min,omitempty" mapstructure:"salary_min"`
	SalaryMax           *float64 `json:"salary_max,omitempty" mapstructure:"salary_max"`
	PreferredIndustries []string `json:"preferred_industries,omitempty" mapstructure:"preferred_industries"`
	JobTypes            []string `json:"job_types,omitempty" mapstructure:"job_types"`
	LocationPreferences []string `json:"location_preferences,omitempty" mapstructure:"location_preferences"`
}

type Skill struct {
	Name        string `json:"skill_name" mapstructure:"skill_name"`
	Type        string `json:"skill_type,omitempty" mapstructure:"skill_type"`
	Proficiency string `json:"proficiency_level,omitempty" mapstructure:"proficiency_level"`
}

// WorkExperience keeps dates as free text. A nil EndDate means the position is ongoing.
type WorkExperience struct {
	JobTitle  string  `json:"job_title" mapstructure:"job_title"`
	Company   string  `json:"company" mapstructure:"company"`
	StartDate string  `json:"start_date" mapstructure:"start_date"`
	EndDate   *string `json:"end_date" mapstructure:"end_date"`
}

// UserData bundles everything the scorer reads about a single user.
type UserData struct {
	Profile    *Profile
	Skills     []Skill
	Experience []WorkExperience
}

// SkillNames returns the raw skill names, skipping blanks.
func (u *UserData) SkillNames() []string {
	names := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		if s.Name == "" {
			continue
		}
		names = append(names, s.Name)
	}
	return names
}
