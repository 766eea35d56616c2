package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Executors     []*executorBlock `hcl:"executor,block"`
	Bundles       []*bundleBlock   `hcl:"bundle,block"`
	Globals       []*globalBlock   `hcl:"global,block"`
	Profiles      []*profileBlock  `hcl:"profile,block"`
	Calls         []*callBlock     `hcl:"call,block"`
	SettleTimeout *string          `hcl:"settle_timeout,optional"`
	Remain        hcl.Body         `hcl:",remain"`
}

// executorBlock is an `executor "goja" { ... }` or `executor "proxy" { ... }` block.
type executorBlock struct {
	Kind               string  `hcl:"kind,label"`
	BridgeName         string  `hcl:"bridge_name,optional"`
	Runtime            *bool   `hcl:"runtime,optional"`
	URL                string  `hcl:"url,optional"`
	Namespace          string  `hcl:"namespace,optional"`
	Timeout            *string `hcl:"timeout,optional"`
	InsecureSkipVerify bool    `hcl:"insecure_skip_verify,optional"`
}

type bundleBlock struct {
	Path      string `hcl:"path,optional"`
	AssetDir  string `hcl:"asset_dir,optional"`
	Asset     string `hcl:"asset,optional"`
	SourceURL string `hcl:"source_url,optional"`
	Fetch     bool   `hcl:"fetch,optional"`
}

// globalBlock holds an arbitrary literal value; it is serialized to JSON
// before it reaches the script.
type globalBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

type profileBlock struct {
	Title     string `hcl:"title,optional"`
	Output    string `hcl:"output"`
	UploadURL string `hcl:"upload_url,optional"`
}

type callBlock struct {
	Module int            `hcl:"module"`
	Method int            `hcl:"method"`
	Args   hcl.Expression `hcl:"args,optional"`
}
