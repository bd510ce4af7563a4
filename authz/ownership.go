// Package authz answers whether a principal may act on a resource by
// resolving the resource's owner along its foreign-key chain back to the
// owning course. Every mutating handler consults it before touching rows.
package authz

import (
	"strconv"

	"github.com/fairuzullah/edu_lms/models"
	"gorm.io/gorm"
)

// Principal is the authenticated actor taken from the request credential.
// Only the id and role embedded in the token are ever trusted; identity
// fields in request bodies are ignored for authorization.
type Principal struct {
	ID   uint
	Role string
}

type Outcome int

const (
	Permit Outcome = iota
	Deny
	NotFound
)

// Decision keeps absent resources distinct from permission failures so a
// missing row is reported as not-found, never as a denial.
type Decision struct {
	Outcome Outcome
	Reason  string
}

func permit() Decision { return Decision{Outcome: Permit} }

func deny(reason string) Decision { return Decision{Outcome: Deny, Reason: reason} }

func notFound() Decision { return Decision{Outcome: NotFound} }

type Kind string

const (
	KindCourse       Kind = "course"
	KindMaterial     Kind = "material"
	KindAssessment   Kind = "assessment"
	KindSubmission   Kind = "submission"
	KindVirtualClass Kind = "virtual_class"
	KindEnrollment   Kind = "enrollment"
)

// chain enumerates the foreign-key walk from a resource row to its owner
// columns. Resolution issues exactly one join query per kind; the chain is
// declared here once instead of being repeated at every endpoint.
type chain struct {
	table       string
	joins       []string
	educatorCol string
	learnerCol  string
}

var chains = map[Kind]chain{
	KindCourse: {
		table:       "courses",
		educatorCol: "courses.educator_id",
	},
	KindMaterial: {
		table:       "materials",
		joins:       []string{"JOIN courses ON courses.id = materials.course_id"},
		educatorCol: "courses.educator_id",
	},
	KindAssessment: {
		table:       "assessments",
		joins:       []string{"JOIN courses ON courses.id = assessments.course_id"},
		educatorCol: "courses.educator_id",
	},
	KindVirtualClass: {
		table:       "virtual_classes",
		joins:       []string{"JOIN courses ON courses.id = virtual_classes.course_id"},
		educatorCol: "courses.educator_id",
	},
	KindSubmission: {
		table: "submissions",
		joins: []string{
			"JOIN assessments ON assessments.id = submissions.assessment_id",
			"JOIN courses ON courses.id = assessments.course_id",
		},
		educatorCol: "courses.educator_id",
		learnerCol:  "submissions.learner_id",
	},
	KindEnrollment: {
		table:       "enrollments",
		joins:       []string{"JOIN courses ON courses.id = enrollments.course_id"},
		educatorCol: "courses.educator_id",
		learnerCol:  "enrollments.learner_id",
	},
}

type owners struct {
	EducatorID uint
	LearnerID  uint
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ParseID converts a path parameter into a resource id. A malformed id can
// never resolve to a row, so callers treat failure as not-found.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (r *Resolver) owners(kind Kind, id uint) (owners, bool, error) {
	c := chains[kind]

	sel := c.educatorCol + " AS educator_id"
	if c.learnerCol != "" {
		sel += ", " + c.learnerCol + " AS learner_id"
	}

	q := r.db.Table(c.table).Select(sel)
	for _, j := range c.joins {
		q = q.Joins(j)
	}

	var own owners
	res := q.Where(c.table+".id = ?", id).Limit(1).Scan(&own)
	if res.Error != nil {
		return owners{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return owners{}, false, nil
	}
	return own, true, nil
}

// CanManage decides whether p may mutate the resource as its educator.
// Admins may manage anything that exists; educators only what resolves to
// their own id along the chain.
func (r *Resolver) CanManage(kind Kind, id uint, p Principal) (Decision, error) {
	own, found, err := r.owners(kind, id)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return notFound(), nil
	}
	if p.Role == models.RoleAdmin {
		return permit(), nil
	}
	if p.Role == models.RoleEducator && own.EducatorID == p.ID {
		return permit(), nil
	}
	return deny("not the owning educator"), nil
}

// CanAuthor decides whether p may act on a learner-owned resource
// (a submission it authored, an enrollment it holds).
func (r *Resolver) CanAuthor(kind Kind, id uint, p Principal) (Decision, error) {
	c := chains[kind]
	if c.learnerCol == "" {
		return deny("resource has no learner owner"), nil
	}

	own, found, err := r.owners(kind, id)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return notFound(), nil
	}
	if p.Role == models.RoleAdmin {
		return permit(), nil
	}
	if own.LearnerID == p.ID {
		return permit(), nil
	}
	return deny("not the owning learner"), nil
}
