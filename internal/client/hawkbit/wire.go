package hawkbit

import (
	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// link is a HAL style hyperlink.
type link struct {
	Href string `json:"href"`
}

func (l *link) href() string {
	if l == nil {
		return ""
	}

	return l.Href
}

func newLink(href string) *link {
	if href == "" {
		return nil
	}

	return &link{Href: href}
}

type moduleLinksJSON struct {
	Self      *link `json:"self,omitempty"`
	Artifacts *link `json:"artifacts,omitempty"`
	Type      *link `json:"type,omitempty"`
	Metadata  *link `json:"metadata,omitempty"`
}

type softwareModuleJSON struct {
	ID          int64            `json:"id,omitempty"`
	Vendor      string           `json:"vendor"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Links       *moduleLinksJSON `json:"_links,omitempty"`
}

type hashesJSON struct {
	SHA1   string `json:"sha1"`
	MD5    string `json:"md5"`
	SHA256 string `json:"sha256"`
}

type artifactJSON struct {
	ID               int64      `json:"id"`
	ProvidedFilename string     `json:"providedFilename"`
	Size             int64      `json:"size"`
	Hashes           hashesJSON `json:"hashes"`
}

type moduleRefJSON struct {
	ID int64 `json:"id"`
}

type distributionSetJSON struct {
	ID                    int64            `json:"id,omitempty"`
	Vendor                string           `json:"vendor,omitempty"`
	Name                  string           `json:"name"`
	Type                  string           `json:"type"`
	Version               string           `json:"version"`
	Description           string           `json:"description"`
	RequiredMigrationStep bool             `json:"requiredMigrationStep"`
	Modules               []moduleRefJSON  `json:"modules,omitempty"`
	Links                 *moduleLinksJSON `json:"_links,omitempty"`
}

type conditionJSON struct {
	Condition  string `json:"condition"`
	Expression string `json:"expression"`
}

type actionJSON struct {
	Action     string `json:"action"`
	Expression string `json:"expression"`
}

type rolloutLinksJSON struct {
	Self  *link `json:"self,omitempty"`
	Start *link `json:"start,omitempty"`
}

type targetsPerStatusJSON struct {
	Running    int64 `json:"running"`
	NotStarted int64 `json:"notstarted"`
	Scheduled  int64 `json:"scheduled"`
	Cancelled  int64 `json:"cancelled"`
	Finished   int64 `json:"finished"`
	Error      int64 `json:"error"`
}

type rolloutJSON struct {
	ID                    int64                 `json:"id,omitempty"`
	Name                  string                `json:"name"`
	Description           string                `json:"description,omitempty"`
	DistributionSetID     int64                 `json:"distributionSetId,omitempty"`
	TargetFilterQuery     string                `json:"targetFilterQuery,omitempty"`
	AmountGroups          int                   `json:"amountGroups,omitempty"`
	SuccessCondition      *conditionJSON        `json:"successCondition,omitempty"`
	SuccessAction         *actionJSON           `json:"successAction,omitempty"`
	ErrorCondition        *conditionJSON        `json:"errorCondition,omitempty"`
	ErrorAction           *actionJSON           `json:"errorAction,omitempty"`
	Status                string                `json:"status,omitempty"`
	TotalTargets          int64                 `json:"totalTargets,omitempty"`
	TotalTargetsPerStatus *targetsPerStatusJSON `json:"totalTargetsPerStatus,omitempty"`
	Links                 *rolloutLinksJSON     `json:"_links,omitempty"`
}

// pagedRolloutsJSON is one page of a rollout listing.
type pagedRolloutsJSON struct {
	Content []rolloutJSON `json:"content"`
	Total   int           `json:"total"`
	Size    int           `json:"size"`
}

func toSoftwareModuleJSON(m *domain.SoftwareModule) softwareModuleJSON {
	return softwareModuleJSON{
		Vendor:      m.Vendor,
		Name:        m.Name,
		Type:        m.Type,
		Version:     m.Version,
		Description: m.Description,
	}
}

func fromSoftwareModuleJSON(in *softwareModuleJSON) *domain.SoftwareModule {
	m := &domain.SoftwareModule{
		ID:          in.ID,
		Vendor:      in.Vendor,
		Name:        in.Name,
		Type:        in.Type,
		Version:     in.Version,
		Description: in.Description,
	}

	if in.Links != nil {
		m.Links = domain.ModuleLinks{
			Self:      in.Links.Self.href(),
			Artifacts: in.Links.Artifacts.href(),
			Type:      in.Links.Type.href(),
			Metadata:  in.Links.Metadata.href(),
		}
	}

	return m
}

func fromArtifactJSON(in *artifactJSON) *domain.Artifact {
	return &domain.Artifact{
		ID:       in.ID,
		Filename: in.ProvidedFilename,
		Size:     in.Size,
		Hashes: domain.Hashes{
			SHA1:   in.Hashes.SHA1,
			MD5:    in.Hashes.MD5,
			SHA256: in.Hashes.SHA256,
		},
	}
}

func toDistributionSetJSON(ds *domain.DistributionSet, links domain.ModuleLinks) distributionSetJSON {
	modules := make([]moduleRefJSON, 0, len(ds.ModuleIDs))
	for _, id := range ds.ModuleIDs {
		modules = append(modules, moduleRefJSON{ID: id})
	}

	return distributionSetJSON{
		Vendor:                ds.Vendor,
		Name:                  ds.Name,
		Type:                  ds.Type,
		Version:               ds.Version,
		Description:           ds.Description,
		RequiredMigrationStep: ds.RequiredMigrationStep,
		Modules:               modules,
		Links: &moduleLinksJSON{
			Self:      newLink(links.Self),
			Artifacts: newLink(links.Artifacts),
			Type:      newLink(links.Type),
			Metadata:  newLink(links.Metadata),
		},
	}
}

func toRolloutJSON(r *domain.Rollout) rolloutJSON {
	return rolloutJSON{
		Name:              r.Name,
		Description:       r.Description,
		DistributionSetID: r.DistributionSetID,
		TargetFilterQuery: r.TargetFilterQuery,
		AmountGroups:      r.AmountGroups,
		SuccessCondition: &conditionJSON{
			Condition:  r.SuccessCondition.Condition,
			Expression: r.SuccessCondition.Expression,
		},
		SuccessAction: &actionJSON{
			Action:     r.SuccessAction.Action,
			Expression: r.SuccessAction.Expression,
		},
		ErrorCondition: &conditionJSON{
			Condition:  r.ErrorCondition.Condition,
			Expression: r.ErrorCondition.Expression,
		},
		ErrorAction: &actionJSON{
			Action:     r.ErrorAction.Action,
			Expression: r.ErrorAction.Expression,
		},
	}
}

func fromRolloutJSON(in *rolloutJSON) *domain.Rollout {
	r := &domain.Rollout{
		ID:                in.ID,
		Name:              in.Name,
		Description:       in.Description,
		DistributionSetID: in.DistributionSetID,
		TargetFilterQuery: in.TargetFilterQuery,
		AmountGroups:      in.AmountGroups,
		Status:            in.Status,
	}

	if in.Links != nil {
		r.StartLink = in.Links.Start.href()
	}

	return r
}

func fromRolloutProgressJSON(in *rolloutJSON) domain.RolloutProgress {
	p := domain.RolloutProgress{
		Status: in.Status,
		Total:  in.TotalTargets,
	}

	if s := in.TotalTargetsPerStatus; s != nil {
		p.Running = s.Running
		p.NotStarted = s.NotStarted
		p.Scheduled = s.Scheduled
		p.Cancelled = s.Cancelled
		p.Finished = s.Finished
		p.Error = s.Error
	}

	return p
}
