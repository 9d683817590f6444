package fluid

import (
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/shapes"
)

// assembler accumulates the point contributions of one element. Residual
// terms are scaled by timefacpre, so K is the exact derivative of the
// returned residual with respect to the unknowns at n+1.
type assembler struct {
	ev       *evaluator
	out      *ElementOutputs
	nsd, nen int
	kdata    []float64
	kstride  int
	rdata    []float64
	mesh     meshStrategy

	conv           []float64 // c·∇N_a
	visc2          []float64 // [(i*nsd+j)*nen+a], d(visc(u))_i/du_ja
	linGal         []float64 // [(i*nsd+j)*nen+b], Galerkin part of linU
	linU           []float64 // [(i*nsd+j)*nen+b], scaled derivative of the momentum residual
	linP           []float64 // [i*nen+b]
	linCon         []float64 // [j*nen+b], scaled derivative of the continuity residual
	lap            []float64 // [a*nen+b], ∇N_a·∇N_b
	inertia        []float64
	momres         []float64
	sgvelU, sgvelP []float64
	rU, rP         []float64 // -sgvelU, -sgvelP
	ssdiv          []float64
	integrand      []float64 // residual of the point before scaling with timefacpre*w*det
}

func newAssembler(ev *evaluator, out *ElementOutputs) (a *assembler) {
	var (
		nsd = ev.nsd
		nen = ev.nen
		kr  = out.Tangent.RawMatrix()
	)
	a = &assembler{
		ev:      ev,
		out:     out,
		nsd:     nsd,
		nen:     nen,
		kdata:   kr.Data,
		kstride: kr.Stride,
		rdata:   out.Force.RawVector().Data,
		conv:    make([]float64, nen),
		visc2:   make([]float64, nsd*nsd*nen),
		linGal:  make([]float64, nsd*nsd*nen),
		linU:    make([]float64, nsd*nsd*nen),
		linP:    make([]float64, nsd*nen),
		linCon:  make([]float64, nsd*nen),
		lap:     make([]float64, nen*nen),
		inertia: make([]float64, nsd),
		momres:  make([]float64, nsd),
		sgvelU:  make([]float64, nsd),
		sgvelP:  make([]float64, nsd),
		rU:      make([]float64, nsd),
		rP:      make([]float64, nsd),
		ssdiv:   make([]float64, nsd),
	}
	a.integrand = make([]float64, len(a.rdata))
	if ev.withMesh {
		a.mesh = newMeshStrategy(nsd)
	}
	return
}

func (a *assembler) vi(node, comp int) int { return node*(a.nsd+1) + comp }
func (a *assembler) pi(node int) int       { return node*(a.nsd+1) + a.nsd }

func (a *assembler) addK(row, col int, v float64) { a.kdata[row*a.kstride+col] += v }

// point adds the contributions of integration point q with weight w
func (a *assembler) point(q int, w float64, g *geometry.Evaluator, ps *pointState, c *coefficients) (err error) {
	var (
		nsd, nen   = a.nsd, a.nen
		p          = a.ev.params
		ti         = p.Time
		mp         = c.mat
		timefac    = ti.TimeFac()
		timefacpre = ti.TimeFacPre()
		fac        = w * g.Det
		visc       = mp.Visc + c.sgvisc
		dens       = mp.DensAF
		densm      = mp.DensAM
		sigma      = mp.ReaCoeff
		transient  = !ti.IsStationary()
		N          = g.Funct
		derxy      = g.Derxy
		viscFac2   = 0.5
	)
	if mp.LowMach {
		viscFac2 -= 1. / 3.
	}
	for b := 0; b < nen; b++ {
		var sum float64
		for j := 0; j < nsd; j++ {
			sum += ps.convvel[j] * derxy.At(j, b)
		}
		a.conv[b] = sum
	}
	for i := range a.visc2 {
		a.visc2[i] = 0
	}
	if g.HigherOrder {
		for b := 0; b < nen; b++ {
			var lapN float64
			for k := 0; k < nsd; k++ {
				lapN += g.Derxy2.At(k, b)
			}
			for i := 0; i < nsd; i++ {
				for j := 0; j < nsd; j++ {
					v := viscFac2 * g.Derxy2.At(shapes.Deriv2Index(nsd, i, j), b)
					if i == j {
						v += 0.5 * lapN
					}
					a.visc2[(i*nsd+j)*nen+b] = v
				}
			}
		}
	}

	// strong momentum residual at the old iterate
	for i := 0; i < nsd; i++ {
		switch {
		case ti.IsGenAlpha():
			a.inertia[i] = densm * ps.accint[i]
		case transient:
			a.inertia[i] = densm * (ps.velint[i] - ps.histint[i]) / timefac
		default:
			a.inertia[i] = 0
		}
		viscOld := 0.5*ps.lapl[i] + viscFac2*ps.graddiv[i]
		a.momres[i] = a.inertia[i] + dens*ps.convOld[i] + ps.gradp[i] - 2*visc*viscOld +
			sigma*ps.velint[i] - mp.DensBody*ps.bodyforce[i]
		if p.Conservative {
			a.momres[i] += dens * ps.velint[i] * ps.cdiv
		}
	}
	similarity := p.Turb.Model.Similarity()
	if similarity {
		var ss []float64
		if ss, err = ps.similarityDivergence(p.Turb.Form); err != nil {
			return
		}
		copy(a.ssdiv, ss)
		for i := 0; i < nsd; i++ {
			a.momres[i] += p.Turb.Cl * dens * a.ssdiv[i]
		}
	}

	// linearization of the momentum and continuity residuals
	for i := 0; i < nsd; i++ {
		for j := 0; j < nsd; j++ {
			for b := 0; b < nen; b++ {
				var v float64
				if i == j {
					v = timefac * (dens*a.conv[b] + sigma*N[b])
					if transient {
						v += densm * N[b]
					}
					if p.Conservative {
						v += timefac * dens * N[b] * ps.cdiv
					}
				}
				if p.Newton {
					v += timefac * dens * N[b] * ps.vderxy.At(i, j)
				}
				if p.Conservative {
					v += timefac * dens * ps.velint[i] * derxy.At(j, b)
				}
				idx := (i*nsd+j)*nen + b
				a.linGal[idx] = v
				a.linU[idx] = v - timefac*2*visc*a.visc2[idx]
			}
		}
	}
	for i := 0; i < nsd; i++ {
		for b := 0; b < nen; b++ {
			a.linP[i*nen+b] = timefacpre * derxy.At(i, b)
			v := derxy.At(i, b)
			if mp.LowMach {
				v -= mp.ScaConvFacAF * N[b] * ps.gradsca[i]
			}
			a.linCon[i*nen+b] = timefac * v
		}
	}
	for x := 0; x < nen; x++ {
		for b := 0; b < nen; b++ {
			var sum float64
			for k := 0; k < nsd; k++ {
				sum += derxy.At(k, x) * derxy.At(k, b)
			}
			a.lap[x*nen+b] = sum
		}
	}

	// continuity residual
	var rhscon float64
	if mp.LowMach {
		var ugradT float64
		for j := 0; j < nsd; j++ {
			ugradT += ps.velint[j] * ps.gradsca[j]
		}
		rhscon = mp.ScaDtFac*ps.scadt + mp.ScaConvFacAF*ugradT + mp.ThermPressAdd
	}
	conres := ps.vdiv - rhscon

	// subgrid velocity
	tauU, tauP := c.tau.Mu, c.tau.Mp
	if p.Stab.Subscales == TimeDependent {
		var (
			sb      = a.ev.subscales
			tau     = c.tau.Mp
			gdt     = ti.Gamma * ti.Dt
			facMtau = 1 / (ti.AlphaM*tau + ti.AfGdt())
			fac1    = (ti.AlphaM*tau + gdt*(ti.AlphaF-1)) * facMtau
			fac2    = ti.Dt * tau * (ti.AlphaM - ti.Gamma) * facMtau
			fac3    = gdt * tau * facMtau
			tauEff  = ti.AlphaF * fac3
		)
		for i := 0; i < nsd; i++ {
			svelnp := fac1*sb.Sveln[q][i] + fac2*sb.Saccn[q][i] - fac3*a.momres[i]
			sb.Svelnp[q][i] = svelnp
			a.sgvelU[i] = (1-ti.AlphaF)*sb.Sveln[q][i] + ti.AlphaF*svelnp
			a.sgvelP[i] = a.sgvelU[i]
		}
		tauU, tauP = tauEff, tauEff
	} else {
		for i := 0; i < nsd; i++ {
			a.sgvelU[i] = -tauU * a.momres[i]
			a.sgvelP[i] = -tauP * a.momres[i]
		}
	}
	for i := 0; i < nsd; i++ {
		a.rU[i], a.rP[i] = -a.sgvelU[i], -a.sgvelP[i]
	}

	a.residual(g, ps, c, fac, conres)
	a.tangent(g, ps, c, fac, tauU, tauP)
	if a.mesh != nil {
		err = a.meshPoint(w, g, ps, c, conres, tauU, tauP)
	}
	return
}

// stabilization signs and factors shared by residual and tangent
func (a *assembler) stabFactors(c *coefficients) (reactive, viscous float64, viscTangent bool) {
	var (
		st   = a.ev.params.Stab
		visc = c.mat.Visc + c.sgvisc
	)
	switch st.Reactive {
	case ReactiveGLS:
		reactive = 1
	case ReactiveUSFEM:
		reactive = -1
	}
	switch st.Viscous {
	case ViscousGLS, ViscousGLSRhs:
		viscous = -2 * visc
	case ViscousUSFEM, ViscousUSFEMRhs:
		viscous = 2 * visc
	}
	viscTangent = st.Viscous == ViscousGLS || st.Viscous == ViscousUSFEM
	return
}

func (a *assembler) residual(g *geometry.Evaluator, ps *pointState, c *coefficients, fac, conres float64) {
	var (
		nsd, nen        = a.nsd, a.nen
		p               = a.ev.params
		st              = p.Stab
		mp              = c.mat
		visc            = mp.Visc + c.sgvisc
		dens            = mp.DensAF
		sigma           = mp.ReaCoeff
		rhsfac          = p.Time.TimeFacPre() * fac
		N               = g.Funct
		derxy           = g.Derxy
		vderxy          = ps.vderxy
		reactive, cv, _ = a.stabFactors(c)
		similarity      = p.Turb.Model.Similarity()
	)
	for x := 0; x < nen; x++ {
		for i := 0; i < nsd; i++ {
			// Galerkin
			r := N[x] * (a.inertia[i] + dens*ps.convOld[i] + sigma*ps.velint[i] - mp.DensBody*ps.bodyforce[i])
			var sym float64
			for j := 0; j < nsd; j++ {
				sym += derxy.At(j, x) * (vderxy.At(i, j) + vderxy.At(j, i))
			}
			r += visc * sym
			if mp.LowMach {
				r -= 2. / 3. * visc * ps.vdiv * derxy.At(i, x)
			}
			if st.GradDiv {
				r += c.tau.C * derxy.At(i, x) * conres
			}
			r -= ps.presint * derxy.At(i, x)
			if p.Conservative {
				r += N[x] * dens * ps.velint[i] * ps.cdiv
			}

			// stabilization
			if st.SUPG {
				r += dens * a.conv[x] * a.rU[i]
			}
			if reactive != 0 {
				r += reactive * sigma * N[x] * a.rU[i]
			}
			if cv != 0 {
				var s float64
				for k := 0; k < nsd; k++ {
					s += a.visc2[(k*nsd+i)*nen+x] * a.rU[k]
				}
				r += cv * s
			}
			if st.Cross != CrossNone {
				for j := 0; j < nsd; j++ {
					r -= N[x] * dens * a.rP[j] * vderxy.At(i, j)
				}
			}
			if st.Reynolds != ReynoldsNone {
				for j := 0; j < nsd; j++ {
					r -= dens * derxy.At(j, x) * a.rP[i] * a.rP[j]
				}
			}

			// turbulence
			if p.Turb.FineScale {
				var fs float64
				for j := 0; j < nsd; j++ {
					fs += derxy.At(j, x) * (ps.fsvderxy.At(i, j) + ps.fsvderxy.At(j, i))
				}
				r += c.fssgvisc * fs
			}
			if similarity {
				r += p.Turb.Cl * dens * N[x] * a.ssdiv[i]
			}
			a.integrand[a.vi(x, i)] = r
		}
		r := N[x] * conres
		if st.PSPG {
			for i := 0; i < nsd; i++ {
				r += derxy.At(i, x) * a.rP[i]
			}
		}
		a.integrand[a.pi(x)] = r
	}
	for k, r := range a.integrand {
		a.rdata[k] += rhsfac * r
	}
}

func (a *assembler) tangent(g *geometry.Evaluator, ps *pointState, c *coefficients, fac, tauU, tauP float64) {
	var (
		nsd, nen                  = a.nsd, a.nen
		p                         = a.ev.params
		st                        = p.Stab
		mp                        = c.mat
		visc                      = mp.Visc + c.sgvisc
		dens                      = mp.DensAF
		sigma                     = mp.ReaCoeff
		timefacfac                = p.Time.TimeFac() * fac
		timefacpre                = p.Time.TimeFacPre()
		N                         = g.Funct
		derxy                     = g.Derxy
		vderxy                    = ps.vderxy
		reactive, cv, viscTangent = a.stabFactors(c)
		cross                     = st.Cross == CrossComplete
		reynolds                  = st.Reynolds == ReynoldsComplete && p.Newton
	)
	if !viscTangent {
		cv = 0
	}
	// subgrid velocity convected by the test function gradient
	crossConv := make([]float64, nen)
	if cross {
		for b := 0; b < nen; b++ {
			for k := 0; k < nsd; k++ {
				crossConv[b] += a.rP[k] * derxy.At(k, b)
			}
		}
	}
	linU := func(i, j, b int) float64 { return a.linU[(i*nsd+j)*nen+b] }
	linP := func(i, b int) float64 { return a.linP[i*nen+b] }

	for x := 0; x < nen; x++ {
		for i := 0; i < nsd; i++ {
			row := a.vi(x, i)
			for b := 0; b < nen; b++ {
				for j := 0; j < nsd; j++ {
					// Galerkin
					v := fac * N[x] * a.linGal[(i*nsd+j)*nen+b]
					if i == j {
						v += timefacfac * visc * a.lap[x*nen+b]
					}
					v += timefacfac * visc * derxy.At(j, x) * derxy.At(i, b)
					if mp.LowMach {
						v -= timefacfac * 2. / 3. * visc * derxy.At(i, x) * derxy.At(j, b)
					}
					if st.GradDiv {
						v += fac * c.tau.C * derxy.At(i, x) * a.linCon[j*nen+b]
					}

					// stabilization
					if st.SUPG {
						v += fac * dens * a.conv[x] * tauU * linU(i, j, b)
						if p.Newton {
							v += timefacfac * dens * N[b] * derxy.At(j, x) * a.rU[i]
						}
					}
					if reactive != 0 {
						v += reactive * fac * sigma * N[x] * tauU * linU(i, j, b)
					}
					if cv != 0 {
						var s float64
						for k := 0; k < nsd; k++ {
							s += a.visc2[(k*nsd+i)*nen+x] * linU(k, j, b)
						}
						v += fac * cv * tauU * s
					}
					if cross {
						var s float64
						for k := 0; k < nsd; k++ {
							s += linU(k, j, b) * vderxy.At(i, k)
						}
						v -= fac * N[x] * dens * tauP * s
						if i == j {
							v -= timefacfac * N[x] * dens * crossConv[b]
						}
					}
					if reynolds {
						var s float64
						for k := 0; k < nsd; k++ {
							s += derxy.At(k, x) * (linU(i, j, b)*a.rP[k] + a.rP[i]*linU(k, j, b))
						}
						v -= fac * dens * tauP * s
					}
					a.addK(row, a.vi(b, j), v)
				}

				// pressure column
				v := -fac * timefacpre * derxy.At(i, x) * N[b]
				if st.SUPG {
					v += fac * dens * a.conv[x] * tauU * linP(i, b)
				}
				if reactive != 0 {
					v += reactive * fac * sigma * N[x] * tauU * linP(i, b)
				}
				if cv != 0 {
					var s float64
					for k := 0; k < nsd; k++ {
						s += a.visc2[(k*nsd+i)*nen+x] * linP(k, b)
					}
					v += fac * cv * tauU * s
				}
				if cross {
					var s float64
					for k := 0; k < nsd; k++ {
						s += linP(k, b) * vderxy.At(i, k)
					}
					v -= fac * N[x] * dens * tauP * s
				}
				if reynolds {
					var s float64
					for k := 0; k < nsd; k++ {
						s += derxy.At(k, x) * (linP(i, b)*a.rP[k] + a.rP[i]*linP(k, b))
					}
					v -= fac * dens * tauP * s
				}
				a.addK(row, a.pi(b), v)
			}
		}

		// continuity row
		row := a.pi(x)
		for b := 0; b < nen; b++ {
			for j := 0; j < nsd; j++ {
				v := fac * N[x] * a.linCon[j*nen+b]
				if st.PSPG {
					var s float64
					for i := 0; i < nsd; i++ {
						s += derxy.At(i, x) * linU(i, j, b)
					}
					v += fac * tauP * s
				}
				a.addK(row, a.vi(b, j), v)
			}
			if st.PSPG {
				var s float64
				for i := 0; i < nsd; i++ {
					s += derxy.At(i, x) * linP(i, b)
				}
				a.addK(row, a.pi(b), fac*tauP*s)
			}
		}
	}
}
