package dto

// CalendarSyncResponse 日历同步结果
type CalendarSyncResponse struct {
	SyncedCount int      `json:"synced_count"`
	FailedFeeds []string `json:"failed_feeds,omitempty"`
}

// CalendarEventResponse 单条日历事件
type CalendarEventResponse struct {
	EventID   string `json:"event_id"`
	GroupName string `json:"group_name"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
