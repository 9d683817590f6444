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
	"os"

	"github.com/slfuchs/4C-sub001/InputParameters"
	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/quadrature"
	"github.com/slfuchs/4C-sub001/shapes"
	"gonum.org/v1/gonum/mat"
)

const exampleFile = `
########################################
Title: "Lid driven cavity element"
Shape: hex8
ElementSize: 0.1
TimeIntegration:
  Scheme: gen_alpha
  RhoInf: 0.5
  Dt: 0.01
Stabilization:
  TauType: taylor_hughes_zarins
  PSPG: true
  SUPG: true
  GradDiv: true
Material:
  Type: newtonian
  Viscosity: 0.01
  Density: 1
Newton: true
State:
  Velocity: [1, 0, 0]
  VelocityGradient:
    - [0, 2, 0]
  Pressure: 0
########################################
`

func processInput(inputFile string) (ip *InputParameters.FluidParameters, err error) {
	if len(inputFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
	}
	var data []byte
	if data, err = os.ReadFile(inputFile); err != nil {
		return
	}
	ip = &InputParameters.FluidParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	return
}

// Case is a single element with its state vectors, ready for evaluation
type Case struct {
	Element  *fluid.Element
	LM       []int
	Dis      *discret.Discretization
	Params   fluid.Parameters
	Material material.Material
}

// referenceCoords returns the nodal reference coordinates, Greville points
// for the NURBS cells
func referenceCoords(kind shapes.ShapeKind) (c [][]float64) {
	if !kind.IsNurbs() {
		return shapes.NodeCoords(kind)
	}
	var (
		nsd = kind.Dim()
		p   = kind.Degree()
	)
	for a := 0; a < kind.NumNodes(); a++ {
		rest := a
		x := make([]float64, nsd)
		for d := 0; d < nsd; d++ {
			x[d] = 2*float64(rest%(p+1))/float64(p) - 1
			rest /= p + 1
		}
		c = append(c, x)
	}
	return
}

// NewCase builds the element of the input file, scaled to ElementSize with
// one corner at the origin, and fills every state from the State section
func NewCase(ip *InputParameters.FluidParameters) (c *Case, err error) {
	var kind shapes.ShapeKind
	if kind, err = shapes.ParseShapeKind(ip.Shape); err != nil {
		return
	}
	if kind.Dim() < 2 {
		return nil, fmt.Errorf("shape %s is not a fluid element shape", kind)
	}
	c = &Case{}
	if c.Params, err = ip.FluidParams(); err != nil {
		return nil, err
	}
	if c.Material, err = ip.NewMaterial(); err != nil {
		return nil, err
	}
	var (
		nsd  = kind.Dim()
		nen  = kind.NumNodes()
		size = ip.ElementSize
		ref  = referenceCoords(kind)
	)
	if size == 0 {
		size = 1
	}
	ele := &fluid.Element{
		ID:         1,
		Shape:      kind,
		NodeIDs:    make([]int, nen),
		X:          mat.NewDense(nsd, nen, nil),
		IsALE:      ip.ALE,
		Owned:      true,
		Conditions: ip.BodyForceCondition(),
	}
	if kind.IsNurbs() {
		ele.Nurbs = shapes.UniformCell(kind)
	}
	for a := 0; a < nen; a++ {
		ele.NodeIDs[a] = a
		for i := 0; i < nsd; i++ {
			ele.X.Set(i, a, 0.5*size*(ref[a][i]+1))
		}
	}
	if c.Params.Stab.Subscales == fluid.TimeDependent {
		var rule quadrature.Rule
		if c.Params.QuadPoints > 0 {
			rule, err = quadrature.New(kind, c.Params.QuadPoints)
		} else {
			rule, err = quadrature.ForShape(kind)
		}
		if err != nil {
			return nil, err
		}
		ele.Subscales = fluid.NewSubscaleBuffer(rule.NumPoints(), nsd)
	}
	c.Element = ele
	c.LM = make([]int, ele.NumDof())
	for i := range c.LM {
		c.LM[i] = i
	}
	var (
		ndof  = ele.NumDof()
		vel   = mat.NewVecDense(ndof, nil)
		temp  = mat.NewVecDense(ndof, nil)
		zeros = func() *mat.VecDense { return mat.NewVecDense(ndof, nil) }
		x     = make([]float64, nsd)
	)
	for a := 0; a < nen; a++ {
		for i := 0; i < nsd; i++ {
			x[i] = ele.X.At(i, a)
		}
		for i, u := range ip.State.VelocityAt(x) {
			vel.SetVec(a*(nsd+1)+i, u)
		}
		vel.SetVec(a*(nsd+1)+nsd, ip.State.Pressure)
		for i := 0; i <= nsd; i++ {
			temp.SetVec(a*(nsd+1)+i, ip.State.Temperature)
		}
	}
	c.Dis = discret.New()
	c.Dis.SetState(fluid.StateVelNP, vel)
	c.Dis.SetState(fluid.StateVelAF, mat.VecDenseCopyOf(vel))
	c.Dis.SetState(fluid.StateHist, mat.VecDenseCopyOf(vel))
	c.Dis.SetState(fluid.StateAccAM, zeros())
	c.Dis.SetState(fluid.StateDispNP, zeros())
	c.Dis.SetState(fluid.StateGridV, zeros())
	c.Dis.SetState(fluid.StateFsVelAF, zeros())
	if ip.State.Temperature > 0 {
		c.Dis.SetState(fluid.StateScaAF, temp)
		c.Dis.SetState(fluid.StateScaAM, mat.VecDenseCopyOf(temp))
		c.Dis.SetState(fluid.StateScaDtAM, zeros())
	}
	return
}
