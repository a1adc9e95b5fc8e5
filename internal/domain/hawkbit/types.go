package hawkbit

// ModuleLinks holds the hyperlinks the server returns for a software module.
type ModuleLinks struct {
	// Self is the module resource itself.
	Self string
	// Artifacts is the artifact upload endpoint.
	Artifacts string
	// Type is the software module type resource.
	Type string
	// Metadata is the module metadata resource.
	Metadata string
}

// Missing returns the names of links the server did not provide.
func (l ModuleLinks) Missing() []string {
	var missing []string

	for name, href := range map[string]string{
		"self":      l.Self,
		"artifacts": l.Artifacts,
		"type":      l.Type,
		"metadata":  l.Metadata,
	} {
		if href == "" {
			missing = append(missing, name)
		}
	}

	return missing
}

// SoftwareModule describes a piece of software prior to bundling.
type SoftwareModule struct {
	// ID is assigned by the server.
	ID          int64
	Vendor      string
	Name        string
	Type        string
	Version     string
	Description string
	// Links is populated from the server response.
	Links ModuleLinks
}

// Hashes are the digests the server computed for an uploaded artifact.
type Hashes struct {
	SHA1   string
	MD5    string
	SHA256 string
}

// Artifact is a binary uploaded to a software module.
type Artifact struct {
	ID       int64
	Filename string
	Size     int64
	Hashes   Hashes
}

// DistributionSet bundles software modules into the unit deployed to targets.
type DistributionSet struct {
	// ID is assigned by the server.
	ID                    int64
	Vendor                string
	Name                  string
	Type                  string
	Version               string
	Description           string
	ModuleIDs             []int64
	RequiredMigrationStep bool
}

// Rule condition and action names understood by the rollout engine.
const (
	ConditionThreshold = "THRESHOLD"
	ActionNextGroup    = "NEXTGROUP"
	ActionPause        = "PAUSE"
)

// Condition triggers a rollout action when its expression is met.
type Condition struct {
	Condition  string
	Expression string
}

// Action is what the rollout engine does once a condition is met.
type Action struct {
	Action     string
	Expression string
}

// Rollout is a phased deployment of a distribution set to filtered targets.
type Rollout struct {
	// ID is assigned by the server.
	ID                int64
	Name              string
	Description       string
	DistributionSetID int64
	TargetFilterQuery string
	AmountGroups      int
	SuccessCondition  Condition
	SuccessAction     Action
	ErrorCondition    Condition
	ErrorAction       Action
	// Status is the server-side lifecycle state.
	Status string
	// StartLink is the endpoint that starts the rollout.
	StartLink string
}
