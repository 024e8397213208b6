package workerpool

// Task wraps one unit of background work with its payload.
type Task struct {
	Err  error
	Data interface{}
	f    func(interface{}) error
}

// NewTask initializes a new task based on a given work function.
func NewTask(f func(interface{}) error, data interface{}) *Task {
	return &Task{f: f, Data: data}
}

func process(workerID int, task *Task) {
	task.Err = task.f(task.Data)
}
