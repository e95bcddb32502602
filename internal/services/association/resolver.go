package association

import (
	"fmt"
	"strings"
	"time"

	"donation-import-backend/internal/models"
	"donation-import-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store ports consumed by the resolver. Lookups return (nil, nil) when no
// record matches; errors are reserved for store failures.
type ChildStore interface {
	FindByName(name string) (*models.Child, error)
	Create(child *models.Child) error
}

type ProjectStore interface {
	FindByTitle(title string) (*models.Project, error)
	Create(project *models.Project) error
}

type SponsorshipStore interface {
	// FindByChild returns an existing sponsorship for the child together
	// with its sponsorship-type project, if any.
	FindByChild(childID uuid.UUID) (*models.Sponsorship, *models.Project, error)
}

// ResolvedChild pairs a child with the project funding it. Sponsorship is
// set when the project was reached through an existing sponsorship. Fan-out
// rows get one entry per named child.
type ResolvedChild struct {
	Child       *models.Child
	Project     *models.Project
	Sponsorship *models.Sponsorship
}

// Resolution is the resolver's verdict for one row. A non-empty
// AttentionReason forces the donation to needs_attention regardless of the
// classified status. Exactly one of Children / Project is populated.
type Resolution struct {
	Children        []ResolvedChild
	Project         *models.Project
	AttentionReason string
}

// Resolver decides which child and/or project a row funds: structured
// metadata first, then the label-parsing strategy chain, then the default
// general project.
type Resolver struct {
	children     ChildStore
	projects     ProjectStore
	sponsorships SponsorshipStore
	strategies   []Strategy
	log          *logrus.Entry
}

func NewResolver(children ChildStore, projects ProjectStore, sponsorships SponsorshipStore) *Resolver {
	return &Resolver{
		children:     children,
		projects:     projects,
		sponsorships: sponsorships,
		strategies:   DefaultStrategies(),
		log:          logger.WithComponent("association"),
	}
}

// Resolve applies metadata-first resolution. Metadata outranks text parsing
// even when both are present; an unresolvable metadata reference stops the
// chain and flags the row rather than silently falling through.
func (r *Resolver) Resolve(view RowView) (Resolution, error) {
	if view.HasChildRef || view.HasProjectRef {
		return r.resolveFromMetadata(view)
	}

	for _, s := range r.strategies {
		ext := s.Extract(view)
		switch ext.Result {
		case NotFound:
			continue
		case Ambiguous:
			r.log.WithFields(logger.Fields{
				"row":      view.RowNumber,
				"strategy": s.Name(),
			}).Debug("ambiguous extraction")
			return r.defaultWithAttention(fmt.Sprintf(
				"ambiguous %s association in label %q", ext.ProjectType, view.Nickname))
		case Found:
			return r.resolveExtraction(view, ext)
		}
	}

	project, err := r.defaultProject()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Project: project}, nil
}

func (r *Resolver) resolveFromMetadata(view RowView) (Resolution, error) {
	if view.HasChildRef {
		child, err := r.children.FindByName(view.ChildRef)
		if err != nil {
			return Resolution{}, err
		}
		if child == nil {
			return r.defaultWithAttention("metadata child reference not found")
		}
		rc, err := r.resolveChild(child)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Children: []ResolvedChild{rc}}, nil
	}

	project, err := r.projects.FindByTitle(view.ProjectRef)
	if err != nil {
		return Resolution{}, err
	}
	if project == nil {
		return r.defaultWithAttention("metadata project reference not found")
	}
	return Resolution{Project: project}, nil
}

func (r *Resolver) resolveExtraction(view RowView, ext Extraction) (Resolution, error) {
	if len(ext.ChildNames) > 0 {
		resolved := make([]ResolvedChild, 0, len(ext.ChildNames))
		for _, name := range ext.ChildNames {
			child, err := r.findOrCreateChild(name)
			if err != nil {
				return Resolution{}, err
			}
			rc, err := r.resolveChild(child)
			if err != nil {
				return Resolution{}, err
			}
			resolved = append(resolved, rc)
		}
		return Resolution{Children: resolved}, nil
	}

	switch ext.ProjectType {
	case models.ProjectTypeCampaign:
		title := strings.TrimSpace(view.Nickname)
		if title == "" {
			title = strings.TrimSpace(view.Description)
		}
		project, err := r.findOrCreateProject(title, models.ProjectTypeCampaign)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Project: project}, nil
	default:
		project, err := r.defaultProject()
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Project: project}, nil
	}
}

// resolveChild applies the one-sponsorship-project-per-child reuse rule: an
// existing sponsorship's project wins, then a project matching the
// conventional title, and only then is a new project created.
func (r *Resolver) resolveChild(child *models.Child) (ResolvedChild, error) {
	sponsorship, project, err := r.sponsorships.FindByChild(child.ID)
	if err != nil {
		return ResolvedChild{}, err
	}
	if project != nil {
		return ResolvedChild{Child: child, Project: project, Sponsorship: sponsorship}, nil
	}
	project, err = r.findOrCreateProject(SponsorshipProjectTitle(child.Name), models.ProjectTypeSponsorship)
	if err != nil {
		return ResolvedChild{}, err
	}
	return ResolvedChild{Child: child, Project: project}, nil
}

// SponsorshipProjectTitle is the conventional title for a child's dedicated
// sponsorship project.
func SponsorshipProjectTitle(childName string) string {
	return "Sponsor " + strings.TrimSpace(childName)
}

func (r *Resolver) findOrCreateChild(name string) (*models.Child, error) {
	child, err := r.children.FindByName(name)
	if err != nil {
		return nil, err
	}
	if child != nil {
		return child, nil
	}
	child = &models.Child{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
	if err := r.children.Create(child); err != nil {
		return nil, err
	}
	r.log.WithField("child", child.Name).Debug("created child")
	return child, nil
}

func (r *Resolver) findOrCreateProject(title, projectType string) (*models.Project, error) {
	project, err := r.projects.FindByTitle(title)
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}
	project = &models.Project{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Type:      projectType,
		CreatedAt: time.Now(),
	}
	if err := r.projects.Create(project); err != nil {
		return nil, err
	}
	r.log.WithFields(logger.Fields{"project": project.Title, "type": projectType}).Debug("created project")
	return project, nil
}

func (r *Resolver) defaultProject() (*models.Project, error) {
	return r.findOrCreateProject(models.DefaultProjectTitle, models.ProjectTypeGeneral)
}

func (r *Resolver) defaultWithAttention(reason string) (Resolution, error) {
	project, err := r.defaultProject()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Project: project, AttentionReason: reason}, nil
}
