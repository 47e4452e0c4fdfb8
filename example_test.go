package nilmap_test

import (
	"fmt"
	"hash/maphash"
	"math"
	"sort"

	"github.com/hupe1980/nilmap"
)

// Example demonstrates the three lookup states.
func Example() {
	m := nilmap.New[int64, string](0)
	m.Put(1, "one")
	m.PutNull(2) // present, but explicitly valueless

	for _, k := range []int64{1, 2, 3} {
		v, p := m.Lookup(k)
		fmt.Printf("%d: %s %q\n", k, p, v)
	}
	// Output:
	// 1: present "one"
	// 2: null ""
	// 3: absent ""
}

// Example_nullValues demonstrates telling a real zero value from null.
func Example_nullValues() {
	m := nilmap.New[int32, int](0)
	m.Put(1, 0)  // a real zero
	m.PutNull(2) // the null value
	m.Put(2, 7)  // null flips to real in place
	m.PutNull(1) // and real flips to null

	v1, ok1 := m.Get(1)
	v2, ok2 := m.Get(2)
	fmt.Println(v1, ok1)
	fmt.Println(v2, ok2)
	fmt.Println("null value present:", m.ContainsNullValue())
	// Output:
	// 0 false
	// 7 true
	// null value present: true
}

// Example_nullKey demonstrates the out-of-band null key.
func Example_nullKey() {
	m := nilmap.New[uint32, string](0)
	m.PutNullKey("keyless")

	v, p := m.LookupNullKey()
	fmt.Println(p, v)
	fmt.Println("len:", m.Len())

	m.RemoveNullKey()
	fmt.Println("empty:", m.IsEmpty())
	// Output:
	// present keyless
	// len: 1
	// empty: true
}

// Example_tokens demonstrates token iteration. Byte-keyed containers walk
// their keys in ascending order.
func Example_tokens() {
	m := nilmap.NewByteMap[string](0)
	m.Put(30, "thirty")
	m.Put(10, "ten")
	m.PutNull(20)
	m.PutNullKey("last")

	for t := m.First(); t != nilmap.Done; t = m.Next(t) {
		if m.IsNullKey(t) {
			fmt.Printf("null key: %q\n", m.Value(t))
			continue
		}
		fmt.Printf("%d: has=%v %q\n", m.Key(t), m.HasValue(t), m.Value(t))
	}
	// Output:
	// 10: has=true "ten"
	// 20: has=false ""
	// 30: has=true "thirty"
	// null key: "last"
}

// Example_floatKeys demonstrates bit-pattern float key identity.
func Example_floatKeys() {
	s := nilmap.NewSet[float64](0)
	s.Add(math.NaN())
	s.Add(0.0)

	fmt.Println("NaN member:", s.Contains(math.NaN()))
	fmt.Println("-0 member:", s.Contains(math.Copysign(0, -1)))
	// Output:
	// NaN member: true
	// -0 member: false
}

// Example_strategies demonstrates the flat switch of 16-bit-keyed maps.
func Example_strategies() {
	m := nilmap.New[uint16, int](0)
	fmt.Println(m.Strategy())

	m.EnsureCapacity(40_000)
	fmt.Println(m.Strategy())
	// Output:
	// sparse
	// flat
}

// Example_hashedMap demonstrates arbitrary keys via an injected capability
// pair.
func Example_hashedMap() {
	type point struct{ x, y int }

	m := nilmap.NewHashedMap[point, string](
		func(a, b point) bool { return a == b },
		func(seed maphash.Seed, p point) uint64 {
			var h maphash.Hash
			h.SetSeed(seed)
			h.WriteByte(byte(p.x))
			h.WriteByte(byte(p.y))
			return h.Sum64()
		},
		0,
	)
	m.Put(point{1, 2}, "origin-ish")

	v, ok := m.Get(point{1, 2})
	fmt.Println(v, ok)
	// Output: origin-ish true
}

// Example_bitmap demonstrates Roaring Bitmap interop on sets.
func Example_bitmap() {
	s := nilmap.NewSet[uint32](0)
	s.Add(3)
	s.Add(1)
	s.Add(2)

	rb := s.Bitmap()
	back := nilmap.FromBitmap[uint32](rb)

	keys := []uint32{}
	for k := range back.All() {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	fmt.Println(keys)
	// Output: [1 2 3]
}
