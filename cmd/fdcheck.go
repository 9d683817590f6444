/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/spf13/cobra"
)

// FDCheckCmd represents the fdcheck command
var FDCheckCmd = &cobra.Command{
	Use:   "fdcheck",
	Short: "Compare the element tangent with finite differences",
	Long: `
Compares every column of the element tangent with central differences of the
element force and reports the largest relative deviation. ALE elements with
mesh linearization also get the mesh block checked.

nsele fdcheck -I element.yaml --eps 1e-6`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		inputFile, _ := cmd.Flags().GetString("inputConditionsFile")
		eps, _ := cmd.Flags().GetFloat64("eps")
		tol, _ := cmd.Flags().GetFloat64("tol")
		return runFDCheck(os.Stdout, inputFile, eps, tol)
	},
}

func init() {
	rootCmd.AddCommand(FDCheckCmd)
	FDCheckCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the element, material and stabilization parameters")
	FDCheckCmd.Flags().Float64("eps", 1e-6, "finite difference step")
	FDCheckCmd.Flags().Float64("tol", 1e-5, "largest accepted relative deviation")
}

func runFDCheck(w io.Writer, inputFile string, eps, tol float64) (err error) {
	ip, err := processInput(inputFile)
	if err != nil {
		return
	}
	c, err := NewCase(ip)
	if err != nil {
		return
	}
	maxRel, err := fluid.FDCheck(c.Element, c.Dis, c.LM, c.Params, c.Material, eps, w)
	if err != nil {
		return
	}
	if c.Element.IsALE && c.Params.MeshLinearization {
		var meshRel float64
		if meshRel, err = fluid.FDCheckMesh(c.Element, c.Dis, c.LM, c.Params, c.Material, eps, w); err != nil {
			return
		}
		if meshRel > maxRel {
			maxRel = meshRel
		}
	}
	if maxRel > tol {
		return fmt.Errorf("largest relative deviation %.3e exceeds %.3e", maxRel, tol)
	}
	return
}
