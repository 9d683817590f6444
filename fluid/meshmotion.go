package fluid

import (
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/turbulence"
	"gonum.org/v1/gonum/mat"
)

// meshStrategy provides the shape sensitivities with respect to the nodal
// coordinates of the current configuration
type meshStrategy interface {
	// sensitivity returns ∂detJ/∂x_kc and writes ∂(dN_a/dx_i)/∂x_kc into dd (nsd x nen)
	sensitivity(g *geometry.Evaluator, k, c int, dd *mat.Dense) (ddet float64)
}

func newMeshStrategy(nsd int) meshStrategy {
	if nsd == 2 {
		return planeMesh{}
	}
	return spatialMesh{}
}

// planeMesh differentiates the explicit 2x2 inverse
//
//	dN/dx = ( y_s N_r - y_r N_s) / det
//	dN/dy = (-x_s N_r + x_r N_s) / det
type planeMesh struct{}

func (planeMesh) sensitivity(g *geometry.Evaluator, k, c int, dd *mat.Dense) (ddet float64) {
	var (
		xr, yr = g.Xjm.At(0, 0), g.Xjm.At(0, 1)
		xs, ys = g.Xjm.At(1, 0), g.Xjm.At(1, 1)
		ncr    = g.Deriv.At(0, c)
		ncs    = g.Deriv.At(1, c)
		det    = g.Det
	)
	if k == 0 {
		ddet = ncr*ys - yr*ncs
	} else {
		ddet = xr*ncs - ncr*xs
	}
	for a := 0; a < g.Nen; a++ {
		var (
			nar = g.Deriv.At(0, a)
			nas = g.Deriv.At(1, a)
			dx  = -g.Derxy.At(0, a) * ddet / det
			dy  = -g.Derxy.At(1, a) * ddet / det
		)
		if k == 0 {
			dy += (ncr*nas - ncs*nar) / det
		} else {
			dx += (ncs*nar - ncr*nas) / det
		}
		dd.Set(0, a, dx)
		dd.Set(1, a, dy)
	}
	return
}

// spatialMesh uses the cofactors of the 3x3 jacobian for the determinant and
// ∂Xji = -Xji ∂Xjm Xji for the derivatives
type spatialMesh struct{}

func (spatialMesh) sensitivity(g *geometry.Evaluator, k, c int, dd *mat.Dense) (ddet float64) {
	J := g.Xjm
	cof := func(i, j int) float64 {
		var (
			r0, r1 = (i + 1) % 3, (i + 2) % 3
			c0, c1 = (j + 1) % 3, (j + 2) % 3
		)
		return J.At(r0, c0)*J.At(r1, c1) - J.At(r0, c1)*J.At(r1, c0)
	}
	for i := 0; i < 3; i++ {
		ddet += cof(i, k) * g.Deriv.At(i, c)
	}
	for i := 0; i < 3; i++ {
		dic := g.Derxy.At(i, c)
		for a := 0; a < g.Nen; a++ {
			dd.Set(i, a, -g.Derxy.At(k, a)*dic)
		}
	}
	return
}

// secondSensitivity writes ∂(d²N_a/dx_i dx_j)/∂x_kc into dd2 (nd2 x nen).
// Moving node c along k shifts the point with N_c, which leaves
//
//	-dN_c/dx_i d²N_a/dx_k dx_j - dN_c/dx_j d²N_a/dx_i dx_k - d²N_c/dx_i dx_j dN_a/dx_k
func secondSensitivity(g *geometry.Evaluator, k, c int, dd2 *mat.Dense) {
	var (
		nsd = g.Nsd
		d2  = func(i, j, a int) float64 { return g.Derxy2.At(shapes.Deriv2Index(nsd, i, j), a) }
	)
	for i := 0; i < nsd; i++ {
		for j := i; j < nsd; j++ {
			var (
				row = shapes.Deriv2Index(nsd, i, j)
				ci  = g.Derxy.At(i, c)
				cj  = g.Derxy.At(j, c)
				cij = d2(i, j, c)
			)
			for a := 0; a < g.Nen; a++ {
				dd2.Set(row, a, -ci*d2(k, j, a)-cj*d2(i, k, a)-cij*g.Derxy.At(k, a))
			}
		}
	}
}

// meshPoint adds the derivative of the residual of the point with respect
// to the nodal displacements. The grid velocity, the body force and all
// material, subgrid viscosity and stabilization parameters are held fixed;
// the subgrid velocity follows the momentum residual.
func (a *assembler) meshPoint(w float64, g *geometry.Evaluator, ps *pointState, c *coefficients, conres, tauU, tauP float64) (err error) {
	var (
		nsd, nen        = a.nsd, a.nen
		es              = a.ev.es
		p               = a.ev.params
		st              = p.Stab
		mp              = c.mat
		visc            = mp.Visc + c.sgvisc
		dens            = mp.DensAF
		sigma           = mp.ReaCoeff
		scale           = p.Time.TimeFacPre() * w
		N               = g.Funct
		derxy           = g.Derxy
		vderxy          = ps.vderxy
		ndof            = a.ev.ndof
		reactive, cv, _ = a.stabFactors(c)
		similarity      = p.Turb.Model.Similarity()
		viscFac2        = 0.5
		df              = make([]float64, ndof)
		dd              = mat.NewDense(nsd, nen, nil)
		dd2             = mat.NewDense(shapes.NumDeriv2(nsd), nen, nil)
		dg              = mat.NewDense(nsd, nsd, nil)
		dfs             = mat.NewDense(nsd, nsd, nil)
		dfg             = mat.NewDense(nsd, nsd, nil)
		cvel            = mat.DenseCopyOf(es.evelaf)
		dgradp          = make([]float64, nsd)
		dgradT          = make([]float64, nsd)
		dconv           = make([]float64, nen)
		dvisc2          = make([]float64, nsd*nsd*nen)
		dconvOld        = make([]float64, nsd)
		dlapl           = make([]float64, nsd)
		dgraddiv        = make([]float64, nsd)
		dreyDiv         = make([]float64, nsd)
		dssdiv          = make([]float64, nsd)
		drU             = make([]float64, nsd)
		drP             = make([]float64, nsd)
		md              = a.out.Mesh.RawMatrix()
	)
	if mp.LowMach {
		viscFac2 -= 1. / 3.
	}
	if es.egridv != nil {
		cvel.Sub(cvel, es.egridv)
	}

	for cn := 0; cn < nen; cn++ {
		for k := 0; k < nsd; k++ {
			ddet := a.mesh.sensitivity(g, k, cn, dd)

			// directional derivatives of the interpolated gradients
			dg.Mul(es.evelaf, dd.T())
			gradScalar(dd, es.epre, dgradp)
			var dvdiv, dcdiv float64
			for i := 0; i < nsd; i++ {
				dvdiv += dg.At(i, i)
				for b := 0; b < nen; b++ {
					dcdiv += cvel.At(i, b) * dd.At(i, b)
				}
				var s float64
				for j := 0; j < nsd; j++ {
					s += ps.convvel[j] * dg.At(i, j)
				}
				dconvOld[i] = s
			}
			for b := 0; b < nen; b++ {
				var s float64
				for j := 0; j < nsd; j++ {
					s += ps.convvel[j] * dd.At(j, b)
				}
				dconv[b] = s
			}
			dconres := dvdiv
			if mp.LowMach && es.escaaf != nil {
				gradScalar(dd, es.escaaf, dgradT)
				var dugradT float64
				for j := 0; j < nsd; j++ {
					dugradT += ps.velint[j] * dgradT[j]
				}
				dconres -= mp.ScaConvFacAF * dugradT
			}
			if g.HigherOrder {
				secondSensitivity(g, k, cn, dd2)
				a.meshSecondDerivatives(dd2, viscFac2, dvisc2, dlapl, dgraddiv)
			}
			if p.Turb.FineScale {
				dfs.Mul(es.efsvel, dd.T())
			}
			if similarity {
				dfg.Mul(es.efvel, dd.T())
				for i := 0; i < nsd; i++ {
					var s float64
					for j := 0; j < nsd; j++ {
						for b := 0; b < nen; b++ {
							s += dd.At(j, b) * es.erey.At(i*nsd+j, b)
						}
					}
					dreyDiv[i] = s
				}
				var ss []float64
				if ss, err = turbulence.SimilarityDivergence(p.Turb.Form, ps.fvel, dfg, dreyDiv); err != nil {
					return
				}
				copy(dssdiv, ss)
			}

			// subgrid velocity
			for i := 0; i < nsd; i++ {
				v := dens*dconvOld[i] + dgradp[i] - 2*visc*(0.5*dlapl[i]+viscFac2*dgraddiv[i])
				if p.Conservative {
					v += dens * ps.velint[i] * dcdiv
				}
				if similarity {
					v += p.Turb.Cl * dens * dssdiv[i]
				}
				drU[i], drP[i] = tauU*v, tauP*v
			}

			for x := 0; x < nen; x++ {
				for i := 0; i < nsd; i++ {
					// Galerkin
					r := N[x] * dens * dconvOld[i]
					if p.Conservative {
						r += N[x] * dens * ps.velint[i] * dcdiv
					}
					for j := 0; j < nsd; j++ {
						r += visc * (dd.At(j, x)*(vderxy.At(i, j)+vderxy.At(j, i)) +
							derxy.At(j, x)*(dg.At(i, j)+dg.At(j, i)))
					}
					if mp.LowMach {
						r -= 2. / 3. * visc * (dvdiv*derxy.At(i, x) + ps.vdiv*dd.At(i, x))
					}
					if st.GradDiv {
						r += c.tau.C * (dd.At(i, x)*conres + derxy.At(i, x)*dconres)
					}
					r -= ps.presint * dd.At(i, x)

					// stabilization
					if st.SUPG {
						r += dens * (dconv[x]*a.rU[i] + a.conv[x]*drU[i])
					}
					if reactive != 0 {
						r += reactive * sigma * N[x] * drU[i]
					}
					if cv != 0 {
						var s float64
						for m := 0; m < nsd; m++ {
							idx := (m*nsd+i)*nen + x
							s += dvisc2[idx]*a.rU[m] + a.visc2[idx]*drU[m]
						}
						r += cv * s
					}
					if st.Cross != CrossNone {
						for j := 0; j < nsd; j++ {
							r -= N[x] * dens * (drP[j]*vderxy.At(i, j) + a.rP[j]*dg.At(i, j))
						}
					}
					if st.Reynolds != ReynoldsNone {
						for j := 0; j < nsd; j++ {
							r -= dens * (dd.At(j, x)*a.rP[i]*a.rP[j] +
								derxy.At(j, x)*(drP[i]*a.rP[j]+a.rP[i]*drP[j]))
						}
					}

					// turbulence
					if p.Turb.FineScale {
						var s float64
						for j := 0; j < nsd; j++ {
							s += dd.At(j, x)*(ps.fsvderxy.At(i, j)+ps.fsvderxy.At(j, i)) +
								derxy.At(j, x)*(dfs.At(i, j)+dfs.At(j, i))
						}
						r += c.fssgvisc * s
					}
					if similarity {
						r += p.Turb.Cl * dens * N[x] * dssdiv[i]
					}
					df[a.vi(x, i)] = r
				}
				r := N[x] * dconres
				if st.PSPG {
					for i := 0; i < nsd; i++ {
						r += dd.At(i, x)*a.rP[i] + derxy.At(i, x)*drP[i]
					}
				}
				df[a.pi(x)] = r
			}
			col := cn*nsd + k
			for row := 0; row < ndof; row++ {
				md.Data[row*md.Stride+col] += scale * (ddet*a.integrand[row] + g.Det*df[row])
			}
		}
	}
	return
}

// meshSecondDerivatives maps the sensitivities of the second derivatives onto
// the viscous operator of the subgrid velocity and the Laplacian terms of the
// momentum residual
func (a *assembler) meshSecondDerivatives(dd2 *mat.Dense, viscFac2 float64, dvisc2, dlapl, dgraddiv []float64) {
	var (
		nsd, nen = a.nsd, a.nen
		evelaf   = a.ev.es.evelaf
	)
	for b := 0; b < nen; b++ {
		var lapN float64
		for m := 0; m < nsd; m++ {
			lapN += dd2.At(m, b)
		}
		for i := 0; i < nsd; i++ {
			for j := 0; j < nsd; j++ {
				v := viscFac2 * dd2.At(shapes.Deriv2Index(nsd, i, j), b)
				if i == j {
					v += 0.5 * lapN
				}
				dvisc2[(i*nsd+j)*nen+b] = v
			}
		}
	}
	for i := 0; i < nsd; i++ {
		dlapl[i], dgraddiv[i] = 0, 0
		for b := 0; b < nen; b++ {
			for m := 0; m < nsd; m++ {
				dlapl[i] += dd2.At(m, b) * evelaf.At(i, b)
				dgraddiv[i] += dd2.At(shapes.Deriv2Index(nsd, i, m), b) * evelaf.At(m, b)
			}
		}
	}
}
