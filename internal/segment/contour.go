package segment

import "image"

// mask is a binary foreground image with its origin at (0,0).
type mask struct {
	w, h int
	pix  []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, pix: make([]bool, w*h)}
}

// at reports whether (x,y) is foreground. Pixels outside the mask are
// background.
func (m *mask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.pix[y*m.w+x]
}

// neighbors lists the 8-neighborhood in clockwise order (y grows downward),
// starting east.
var neighbors = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

func direction(d image.Point) int {
	for i, n := range neighbors {
		if n == d {
			return i
		}
	}
	return -1
}

// externalContours traces the outer border of every foreground region that
// is not enclosed by another region, in raster order of each region's first
// pixel. Foreground is 8-connected and background 4-connected.
func externalContours(m *mask) []contour {
	contours := make([]contour, 0)
	if m.w == 0 || m.h == 0 {
		return contours
	}

	outside := m.outerBackground()
	labeled := make([]bool, len(m.pix))

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			i := y*m.w + x
			if !m.pix[i] || labeled[i] {
				continue
			}
			m.fill(labeled, x, y)

			// The west neighbor of a region's first pixel is background from
			// the region's surroundings; if that is not the outer background
			// the region sits inside a hole.
			if x > 0 && !outside[i-1] {
				continue
			}

			chain := m.traceBorder(image.Pt(x, y))
			contours = append(contours, contour{
				points: compress(chain),
				bounds: boundingRect(chain),
			})
		}
	}

	return contours
}

// outerBackground marks the background pixels 4-connected to the image frame.
func (m *mask) outerBackground() []bool {
	outside := make([]bool, len(m.pix))
	stack := make([]image.Point, 0)

	push := func(x, y int) {
		i := y*m.w + x
		if m.pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < m.w; x++ {
		push(x, 0)
		push(x, m.h-1)
	}
	for y := 0; y < m.h; y++ {
		push(0, y)
		push(m.w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range [4]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
			q := p.Add(d)
			if q.X < 0 || q.Y < 0 || q.X >= m.w || q.Y >= m.h {
				continue
			}
			push(q.X, q.Y)
		}
	}

	return outside
}

// fill marks the 8-connected foreground region containing (startX, startY).
// Uses an explicit stack so large regions cannot overflow the goroutine stack.
func (m *mask) fill(labeled []bool, startX, startY int) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.at(p.X, p.Y) {
			continue
		}
		i := p.Y*m.w + p.X
		if labeled[i] {
			continue
		}
		labeled[i] = true

		for _, d := range neighbors {
			stack = append(stack, p.Add(d))
		}
	}
}

// traceBorder follows the outer border of the region whose first pixel (in
// raster order) is start, returning every border pixel in visiting order.
// The walk goes counterclockwise on screen: down the left side first.
func (m *mask) traceBorder(start image.Point) []image.Point {
	first := -1
	for k := 0; k < 8; k++ {
		d := (west + k) % 8
		if m.at(start.X+neighbors[d].X, start.Y+neighbors[d].Y) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	second := start.Add(neighbors[first])
	prev, cur := second, start
	chain := make([]image.Point, 0)

	for {
		from := direction(prev.Sub(cur))

		next := prev
		for k := 1; k <= 8; k++ {
			d := (from - k + 8) % 8
			q := cur.Add(neighbors[d])
			if m.at(q.X, q.Y) {
				next = q
				break
			}
		}

		chain = append(chain, cur)
		if next == start && cur == second {
			return chain
		}
		prev, cur = cur, next
	}
}

// compress drops border points that lie in the middle of a straight run,
// keeping only the points where the walking direction changes.
func compress(chain []image.Point) []image.Point {
	n := len(chain)
	if n < 3 {
		return chain
	}

	out := make([]image.Point, 0, n)
	for i, p := range chain {
		prev := chain[(i+n-1)%n]
		next := chain[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	return out
}

// boundingRect returns the smallest rectangle containing every point.
func boundingRect(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	r := image.Rectangle{Min: points[0], Max: points[0].Add(image.Pt(1, 1))}
	for _, p := range points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}
