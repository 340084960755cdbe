package kdtree

// node is one split of the tree. Index is the point's offset in the Build
// input and orders equal distances.
type node struct {
	Key   Point
	Index int
	Left  *node
	Right *node
}
