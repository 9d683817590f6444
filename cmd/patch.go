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
	"runtime"
	"time"

	"github.com/slfuchs/4C-sub001/InputParameters"
	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/slfuchs/4C-sub001/patch"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// PatchCmd represents the patch command
var PatchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Assemble a structured box of elements",
	Long: `
Meshes a box with quad4 or hex8 elements of the input file's ElementSize,
assembles the global tangent and force in parallel and reports their norms
and the layer statistics of the dynamic Smagorinsky model.

nsele patch -I channel.yaml -n 8 --workers 4`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		inputFile, _ := cmd.Flags().GetString("inputConditionsFile")
		n, _ := cmd.Flags().GetInt("n")
		workers, _ := cmd.Flags().GetInt("workers")
		return runPatch(os.Stdout, inputFile, n, workers)
	},
}

func init() {
	rootCmd.AddCommand(PatchCmd)
	PatchCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the element, material and stabilization parameters")
	PatchCmd.Flags().IntP("n", "n", 4, "number of elements per direction")
	PatchCmd.Flags().Int("workers", runtime.NumCPU(), "number of parallel element loops")
}

func patchStates(m *patch.Mesh, ip *InputParameters.FluidParameters) (dis *discret.Discretization) {
	var (
		vel = m.NodalVector(func(x []float64) []float64 {
			return append(ip.State.VelocityAt(x), ip.State.Pressure)
		})
		zeros = func() *mat.VecDense { return mat.NewVecDense(m.NumDof, nil) }
	)
	dis = discret.New()
	dis.SetState(fluid.StateVelNP, vel)
	dis.SetState(fluid.StateVelAF, mat.VecDenseCopyOf(vel))
	dis.SetState(fluid.StateHist, mat.VecDenseCopyOf(vel))
	dis.SetState(fluid.StateAccAM, zeros())
	if ip.State.Temperature > 0 {
		temp := m.NodalVector(func(x []float64) (v []float64) {
			v = make([]float64, m.Nsd+1)
			for i := range v {
				v[i] = ip.State.Temperature
			}
			return
		})
		dis.SetState(fluid.StateScaAF, temp)
		dis.SetState(fluid.StateScaAM, mat.VecDenseCopyOf(temp))
		dis.SetState(fluid.StateScaDtAM, zeros())
	}
	return
}

func runPatch(w io.Writer, inputFile string, n, workers int) (err error) {
	ip, err := processInput(inputFile)
	if err != nil {
		return
	}
	kind, err := shapes.ParseShapeKind(ip.Shape)
	if err != nil {
		return
	}
	size := ip.ElementSize
	if size == 0 {
		size = 1
	}
	var (
		nsd    = kind.Dim()
		div    = make([]int, nsd)
		length = make([]float64, nsd)
	)
	for d := range div {
		div[d], length[d] = n, float64(n)*size
	}
	m, err := patch.NewBox(kind, div, length)
	if err != nil {
		return
	}
	m.SetConditions(ip.BodyForceCondition())
	params, err := ip.FluidParams()
	if err != nil {
		return
	}
	mt, err := ip.NewMaterial()
	if err != nil {
		return
	}
	start := time.Now()
	sys, err := m.Assemble(patchStates(m, ip), params, mt, workers)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%d %s elements, %d dofs, %d nonzeros, assembled in %v\n",
		len(m.Elements), kind, m.NumDof, sys.K.NNZ(), time.Since(start))
	sum := make([]float64, nsd+1)
	for i := 0; i < m.NumDof; i++ {
		sum[i%(nsd+1)] += sys.F.AtVec(i)
	}
	fmt.Fprintf(w, "|F|_2 = %g, sum of F per component = %v\n", mat.Norm(sys.F, 2), sum)
	if params.List.HasSublist(fluid.TurbulenceList) {
		ls, e := discret.Get[*turbulence.LayerStatistics](params.List.Sublist(fluid.TurbulenceList), fluid.LayerStatistics)
		if e == nil {
			cs, _, visceff := ls.Means()
			for l := range cs {
				fmt.Fprintf(w, "layer %2d [%8.4f, %8.4f]  Cs = %12.5e  visc_eff = %12.5e  (%d elements)\n",
					l, ls.Planes[l], ls.Planes[l+1], cs[l], visceff[l], ls.Count[l])
			}
		}
	}
	return
}
