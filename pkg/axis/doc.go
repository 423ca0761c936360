// Package axis maps data values to device pixels and back.
//
// A [Transform] pairs a data interval with the pixel interval of the row or
// column an axis is bound to. Linear and logarithmic scales are supported;
// the normalisation step (value to [0,1] and back) is delegated to
// github.com/aclements/go-moremath/scale. Screen polarity is explicit:
// set Inverted for axes whose pixels grow opposite to the data, such as a
// y axis drawn top-down.
//
// Values a transform cannot place (non-positive values on a log axis, any
// value on a degenerate axis) produce an error coded
// errors.ErrCodeDomain. Callers that render many points skip the point and
// carry on.
//
// [Compose] builds the [Affine] that moves pixels laid out against one
// pair of axes onto another pair, which lets a renderer reproject a cached
// image while a fresh one is computed.
package axis
