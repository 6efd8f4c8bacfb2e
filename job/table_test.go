package job

import "testing"

func TestRegisterAndReapDone(t *testing.T) {
	tbl := NewTable()
	procs := []*Process{{Pid: 111, CmdString: "sleep 10"}}
	id := tbl.Register(111, procs, false, "sleep 10 &")
	if id != 1 {
		t.Fatalf("expected first job id 1, got %d", id)
	}

	tbl.UpdateProcess(111, 0, false, false)
	j, ok := tbl.Get(id)
	if !ok || j.State != Done {
		t.Fatalf("expected job Done, got %+v", j)
	}

	done := tbl.ReapDone()
	if len(done) != 1 {
		t.Fatalf("expected 1 done job, got %d", len(done))
	}
	if again := tbl.ReapDone(); len(again) != 0 {
		t.Fatal("job reported twice")
	}
	if _, ok := tbl.Get(id); ok {
		t.Fatal("reaped job should be removed from the table")
	}
}

func TestAggregateStateStoppedBeatsDone(t *testing.T) {
	tbl := NewTable()
	procs := []*Process{{Pid: 1}, {Pid: 2}}
	tbl.Register(1, procs, true, "a | b")
	tbl.UpdateProcess(1, 0, false, false)
	tbl.UpdateProcess(2, 0, true, false)
	jobs := tbl.List()
	if jobs[0].State != Stopped {
		t.Fatalf("expected Stopped, got %v", jobs[0].State)
	}
}
