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
	"gonum.org/v1/gonum/mat"
)

// EvaluateCmd represents the evaluate command
var EvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the tangent and force of a single element",
	Long: `
Evaluates the element tangent, the element force and, for ALE elements with
mesh linearization, the mesh block of the element described in the input file.

nsele evaluate -I element.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		inputFile, _ := cmd.Flags().GetString("inputConditionsFile")
		showTangent, _ := cmd.Flags().GetBool("tangent")
		return runEvaluate(os.Stdout, inputFile, showTangent)
	},
}

func init() {
	rootCmd.AddCommand(EvaluateCmd)
	EvaluateCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the element, material and stabilization parameters")
	EvaluateCmd.Flags().BoolP("tangent", "t", false, "print the full element tangent")
}

func runEvaluate(w io.Writer, inputFile string, showTangent bool) (err error) {
	ip, err := processInput(inputFile)
	if err != nil {
		return
	}
	ip.Print(w)
	c, err := NewCase(ip)
	if err != nil {
		return
	}
	out, err := fluid.Evaluate(c.Element, c.Dis, c.LM, c.Params, c.Material)
	if err != nil {
		return
	}
	nsd := c.Element.Nsd()
	fmt.Fprintf(w, "element %d, %s, %d dofs\n", c.Element.ID, c.Element.Shape, c.Element.NumDof())
	for a := 0; a < c.Element.Nen(); a++ {
		fmt.Fprintf(w, "node %3d  F = [", a)
		for k := 0; k <= nsd; k++ {
			fmt.Fprintf(w, " %14.6e", out.Force.AtVec(a*(nsd+1)+k))
		}
		fmt.Fprintf(w, " ]\n")
	}
	fmt.Fprintf(w, "|K|_F = %g, |F|_2 = %g\n", mat.Norm(out.Tangent, 2), mat.Norm(out.Force, 2))
	if showTangent {
		fmt.Fprintf(w, "K = %v\n", mat.Formatted(out.Tangent, mat.Prefix("    "), mat.Squeeze()))
	}
	if out.Mesh != nil {
		fmt.Fprintf(w, "|dR/dd|_F = %g\n", mat.Norm(out.Mesh, 2))
	}
	return
}
