package bayes

// Factor is a table over discrete variables. Values are stored row-major with
// the last variable changing fastest.
type Factor struct {
	vars   []string
	card   []int
	values []float64
}

func newFactor(vars []string, card []int) *Factor {
	n := 1
	for _, c := range card {
		n *= c
	}
	return &Factor{
		vars:   vars,
		card:   card,
		values: make([]float64, n),
	}
}

// Vars returns the factor's scope.
func (f *Factor) Vars() []string { return append([]string(nil), f.vars...) }

// Values returns a copy of the table.
func (f *Factor) Values() []float64 { return append([]float64(nil), f.values...) }

func (f *Factor) indexOf(v string) int {
	for i, name := range f.vars {
		if name == v {
			return i
		}
	}
	return -1
}

func (f *Factor) strides() []int {
	s := make([]int, len(f.card))
	step := 1
	for i := len(f.card) - 1; i >= 0; i-- {
		s[i] = step
		step *= f.card[i]
	}
	return s
}

// decode writes the assignment of flat index idx into dst.
func (f *Factor) decode(idx int, dst []int) {
	for i := len(f.card) - 1; i >= 0; i-- {
		dst[i] = idx % f.card[i]
		idx /= f.card[i]
	}
}

// Product multiplies two factors over the union of their scopes.
func Product(a, b *Factor) *Factor {
	vars := append([]string(nil), a.vars...)
	card := append([]int(nil), a.card...)
	for i, v := range b.vars {
		if a.indexOf(v) < 0 {
			vars = append(vars, v)
			card = append(card, b.card[i])
		}
	}
	out := newFactor(vars, card)

	// position of each of a's and b's variables inside the output scope
	aPos := make([]int, len(a.vars))
	for i, v := range a.vars {
		aPos[i] = out.indexOf(v)
	}
	bPos := make([]int, len(b.vars))
	for i, v := range b.vars {
		bPos[i] = out.indexOf(v)
	}
	aStride, bStride := a.strides(), b.strides()

	assign := make([]int, len(vars))
	for i := range out.values {
		out.decode(i, assign)
		ai, bi := 0, 0
		for j, p := range aPos {
			ai += assign[p] * aStride[j]
		}
		for j, p := range bPos {
			bi += assign[p] * bStride[j]
		}
		out.values[i] = a.values[ai] * b.values[bi]
	}
	return out
}

// Reduce fixes variable v to state and drops it from the scope. The receiver
// is left untouched.
func (f *Factor) Reduce(v string, state int) *Factor {
	pos := f.indexOf(v)
	if pos < 0 {
		return f
	}
	return f.project(pos, func(src []float64, base, stride int) float64 {
		return src[base+state*stride]
	})
}

// SumOut marginalizes variable v.
func (f *Factor) SumOut(v string) *Factor {
	pos := f.indexOf(v)
	if pos < 0 {
		return f
	}
	n := f.card[pos]
	return f.project(pos, func(src []float64, base, stride int) float64 {
		var sum float64
		for s := 0; s < n; s++ {
			sum += src[base+s*stride]
		}
		return sum
	})
}

// project builds a factor without the variable at pos, filling each cell from
// the slice of the source table along that variable.
func (f *Factor) project(pos int, cell func(src []float64, base, stride int) float64) *Factor {
	vars := make([]string, 0, len(f.vars)-1)
	card := make([]int, 0, len(f.card)-1)
	for i := range f.vars {
		if i != pos {
			vars = append(vars, f.vars[i])
			card = append(card, f.card[i])
		}
	}
	out := newFactor(vars, card)
	srcStride := f.strides()

	assign := make([]int, len(vars))
	for i := range out.values {
		out.decode(i, assign)
		base := 0
		k := 0
		for j := range f.vars {
			if j == pos {
				continue
			}
			base += assign[k] * srcStride[j]
			k++
		}
		out.values[i] = cell(f.values, base, srcStride[pos])
	}
	return out
}

// Normalize returns a copy scaled to sum to one, and the original sum.
func (f *Factor) Normalize() (*Factor, float64) {
	var sum float64
	for _, v := range f.values {
		sum += v
	}
	out := &Factor{
		vars:   append([]string(nil), f.vars...),
		card:   append([]int(nil), f.card...),
		values: make([]float64, len(f.values)),
	}
	if sum == 0 {
		return out, 0
	}
	for i, v := range f.values {
		out.values[i] = v / sum
	}
	return out, sum
}
