package shaders

import (
	"fmt"
	"strings"

	"github.com/gekko3d/volumetric/sdfrt/rt/nodes"
)

// FunctionName is the generated entry point of a node, e.g.
// Volumetric_Raymarching_Box_float.
func FunctionName(n nodes.Node) string {
	return "Volumetric_" + strings.ReplaceAll(n.Name(), " ", "_") + "_float"
}

// Wrapper renders the node's entry point from its slot table and body.
func Wrapper(n nodes.Node) string {
	slots := n.Slots()
	params := make([]string, 0, len(slots))
	for _, s := range slots {
		p := s.Type.HLSL() + " " + s.Name
		if s.Output {
			p = "out " + p
		}
		params = append(params, p)
	}
	return fmt.Sprintf("void %s(%s)\n%s\n",
		FunctionName(n), strings.Join(params, ", "), strings.Trim(n.Body(), "\n"))
}

// Generate emits the fragments needed by every node followed by one wrapper per
// distinct node name, using the embedded library.
func Generate(ns ...nodes.Node) (string, error) {
	lib, err := Default()
	if err != nil {
		return "", err
	}
	return GenerateWith(lib, ns...)
}

func GenerateWith(lib *Library, ns ...nodes.Node) (string, error) {
	reg := NewRegistry()
	for _, n := range ns {
		if err := reg.ProvideFragments(lib, n.Functions()...); err != nil {
			return "", fmt.Errorf("generate %s: %w", n.Kind(), err)
		}
	}
	for _, n := range ns {
		if err := reg.ProvideFunction(FunctionName(n), Wrapper(n)); err != nil {
			return "", fmt.Errorf("generate %s: %w", n.Kind(), err)
		}
	}
	return reg.String(), nil
}
