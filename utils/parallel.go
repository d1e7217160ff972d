package utils

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// serialThreshold is the amount of work below which groups are not worth spawning.
const serialThreshold = 64

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the calculated group count.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int)
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc)
)

// GroupWorkParallel splits totalSize items into contiguous groups and runs each group on its own
// goroutine. Every item in [0, totalSize) is visited exactly once. Groups never share items, so a
// member writing only to its own workNum slot needs no synchronization. A panic inside a group is
// recovered and returned as an error once all groups finish.
func GroupWorkParallel(totalSize int, before BeforeParallelGroupWorkFunc, groupWork GroupWorkFunc) error {
	if totalSize <= 0 {
		before(0)
		return nil
	}
	numGroups := ParallelFactor
	if totalSize < serialThreshold || numGroups > totalSize {
		numGroups = MaxInt(1, MinInt(numGroups, totalSize/serialThreshold))
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	before(numGroups)

	var group errgroup.Group
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		groupNum := groupNum
		group.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = fmt.Errorf("got panic running group %d in parallel: %v", groupNum, thePanic)
				}
			}()
			thisGroupSize := groupSize
			if groupNum == numGroups-1 {
				thisGroupSize += extra
			}
			from := groupSize * groupNum
			to := from + thisGroupSize
			memberWork, groupWorkDone := groupWork(groupNum, thisGroupSize, from, to)
			if memberWork != nil {
				memberNum := 0
				for workNum := from; workNum < to; workNum++ {
					memberWork(memberNum, workNum)
					memberNum++
				}
			}
			if groupWorkDone != nil {
				groupWorkDone()
			}
			return nil
		})
	}
	return group.Wait()
}

// ParallelForEach calls fn once for every index in [0, size), spread across groups.
func ParallelForEach(size int, fn func(i int)) error {
	return GroupWorkParallel(
		size,
		func(int) {},
		func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
			return func(memberNum, workNum int) { fn(workNum) }, nil
		},
	)
}
