package terraform

import "github.com/hashicorp/hcl/v2"

// HCLInstance captures the image of an aws_instance resource.
// The image is kept as an expression so references can be skipped instead
// of failing the whole file.
type HCLInstance struct {
	AMI    hcl.Expression `hcl:"ami,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

// HCLLaunchTemplate captures the image of an aws_launch_template resource.
type HCLLaunchTemplate struct {
	ImageID hcl.Expression `hcl:"image_id,optional"`
	Remain  hcl.Body       `hcl:",remain"`
}

// ResourceBlock represents a single resource block in HCL.
type ResourceBlock struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// VariableBlock represents a variable declaration.
type VariableBlock struct {
	Name    string         `hcl:"name,label"`
	Default hcl.Expression `hcl:"default,optional"`
	Remain  hcl.Body       `hcl:",remain"`
}

// ConfigFile represents the top-level structure containing resource and variable blocks.
type ConfigFile struct {
	Resources []*ResourceBlock `hcl:"resource,block"`
	Variables []*VariableBlock `hcl:"variable,block"`
	Remain    hcl.Body         `hcl:",remain"`
}
