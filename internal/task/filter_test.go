package task

import "testing"

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"pending", FilterPending, false},
		{" Completed ", FilterCompleted, false},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterApply(t *testing.T) {
	tasks := []Task{
		{ID: "1", Completed: false},
		{ID: "2", Completed: true},
		{ID: "3", Completed: false},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"1", "2", "3"}},
		{FilterPending, []string{"1", "3"}},
		{FilterCompleted, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := tt.filter.Apply(tasks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCount(t *testing.T) {
	got := Count([]Task{{Completed: true}, {}, {}, {Completed: true}, {}})
	want := Stats{Total: 5, Pending: 3, Completed: 2}
	if got != want {
		t.Errorf("Count: got %+v, want %+v", got, want)
	}
	if empty := Count(nil); empty != (Stats{}) {
		t.Errorf("Count(nil): got %+v", empty)
	}
}
