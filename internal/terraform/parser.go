package terraform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"autoremediator/pkg/logging"
)

const (
	awsInstanceType       = "aws_instance"
	awsLaunchTemplateType = "aws_launch_template"
)

// approvedAMIVariables are the variable names whose defaults list approved images
var approvedAMIVariables = map[string]bool{
	"approved_ami_id":  true,
	"approved_ami_ids": true,
}

type DefaultParser struct {
	logger logging.Logger
}

// NewDefaultParser creates a new instance of DefaultParser
func NewDefaultParser() *DefaultParser {
	return NewParserWithLogger(
		logging.NewDefaultLogger(),
	)
}

// NewParserWithLogger creates a new instance of DefaultParser with a specific logger
func NewParserWithLogger(logger logging.Logger) *DefaultParser {
	return &DefaultParser{
		logger: logger,
	}
}

// ApprovedAMIs collects the literal image IDs declared in a Terraform file,
// or in every .tf file of a directory. Images come from aws_instance ami,
// aws_launch_template image_id and the defaults of approved_ami_id(s)
// variables. Non-literal values are skipped with a warning.
func (p DefaultParser) ApprovedAMIs(path string) ([]string, error) {
	files, err := terraformFiles(path)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	seen := make(map[string]bool)
	for _, f := range files {
		ids, err := p.parseFile(parser, f)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = true
		}
	}

	amis := make([]string, 0, len(seen))
	for id := range seen {
		amis = append(amis, id)
	}
	sort.Strings(amis)
	p.logger.Info("loaded approved AMIs from terraform", "path", path, "count", len(amis))
	return amis, nil
}

func (p DefaultParser) parseFile(parser *hclparse.Parser, configPath string) ([]string, error) {
	file, diags := parser.ParseHCLFile(configPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", configPath, diags.Error())
	}

	if file == nil || file.Body == nil {
		return nil, fmt.Errorf("parsed HCL file is empty or invalid: %s", configPath)
	}

	var cfg ConfigFile
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body %s: %s", configPath, diags.Error())
	}

	var amis []string
	for _, res := range cfg.Resources {
		var expr hcl.Expression
		switch res.Type {
		case awsInstanceType:
			var instance HCLInstance
			if diags := gohcl.DecodeBody(res.Body, nil, &instance); diags.HasErrors() {
				p.logger.Warn("failed to decode resource", "type", res.Type, "name", res.Name, "error", diags.Error())
				continue
			}
			expr = instance.AMI
		case awsLaunchTemplateType:
			var tmpl HCLLaunchTemplate
			if diags := gohcl.DecodeBody(res.Body, nil, &tmpl); diags.HasErrors() {
				p.logger.Warn("failed to decode resource", "type", res.Type, "name", res.Name, "error", diags.Error())
				continue
			}
			expr = tmpl.ImageID
		default:
			continue
		}

		ids, err := literalStrings(expr)
		if err != nil {
			p.logger.Warn("skipping non-literal image", "type", res.Type, "name", res.Name, "error", err)
			continue
		}
		p.logger.Debug("found image", "type", res.Type, "name", res.Name, "amis", ids)
		amis = append(amis, ids...)
	}

	for _, v := range cfg.Variables {
		if !approvedAMIVariables[v.Name] {
			continue
		}
		ids, err := literalStrings(v.Default)
		if err != nil {
			p.logger.Warn("skipping non-literal variable default", "variable", v.Name, "error", err)
			continue
		}
		amis = append(amis, ids...)
	}
	return amis, nil
}

// literalStrings evaluates expr without variables and returns its string
// values. A string, or a list, tuple or set of strings, is accepted.
func literalStrings(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		if s := val.AsString(); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var out []string
		it := val.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			if el.IsNull() || el.Type() != cty.String {
				return nil, fmt.Errorf("element of type %s is not a string", el.Type().FriendlyName())
			}
			if s := el.AsString(); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

func terraformFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat terraform path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.tf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list terraform files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .tf files found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}
