package scad

// env carries the lexically scoped $fn/$fa/$fs bindings (spec.md §4.2
// "Special bindings"). A child call inherits the nearest enclosing value
// unless it sets its own; FnUnset resolves the §9 open question that a
// child's own $fn=0 means "unset", not "zero segments", so it still
// inherits the parent's value.
type env struct {
	fn, fa, fs float64
}

// FnUnset is the sentinel for "$fn not set at this scope" (spec.md §9).
const FnUnset = 0

func defaultEnv() env {
	return env{fn: FnUnset, fa: 12, fs: 2}
}

// child returns a new env with any explicitly-set special variables from
// bindings applied over e; bindings missing a key (or carrying FnUnset for
// $fn) fall through to e's value.
func (e env) child(fn, fa, fs *float64) env {
	next := e
	if fn != nil && *fn != FnUnset {
		next.fn = *fn
	}
	if fa != nil {
		next.fa = *fa
	}
	if fs != nil {
		next.fs = *fs
	}
	return next
}

// resolveFn computes the effective polygon-approximation segment count for
// a round primitive of the given radius, per spec.md §4.3: if $fn is set,
// min(fn, maxFn); otherwise derive from $fa/$fs using the radius.
func (e env) resolveFn(radius float64, maxFn int) int {
	var n int
	if e.fn != FnUnset && e.fn > 0 {
		n = int(e.fn)
	} else {
		n = fnFromFaFs(radius, e.fa, e.fs)
	}
	if maxFn > 0 && n > maxFn {
		n = maxFn
	}
	if n < 3 {
		n = 3
	}
	return n
}

func fnFromFaFs(r, fa, fs float64) int {
	if r <= 0 {
		return 3
	}
	if fa <= 0 {
		fa = 12
	}
	if fs <= 0 {
		fs = 2
	}
	n1 := ceilDiv(360, fa)
	n2 := ceilDiv(2*3.141592653589793*r, fs)
	n := n1
	if n2 < n {
		n = n2
	}
	if n < 5 {
		n = 5
	}
	return n
}

func ceilDiv(a, b float64) int {
	q := a / b
	n := int(q)
	if float64(n) < q {
		n++
	}
	return n
}
