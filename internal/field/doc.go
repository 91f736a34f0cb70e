// Package field maps the 0-100 yard scale onto a perspective trapezoid and builds the
// motion paths used to animate the ball marker on a card's field diagram.
//
// The far (top) edge of the field is narrower than the near (bottom) edge. A yard line is
// located by interpolating along each edge and then between the edges by vertical position.
package field
