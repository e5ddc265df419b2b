//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Step is the prompt an admin is currently answering
// ENUM(filter_name,filter_buttons,edit_name,add_buttons,replace_buttons,delete_indices,swap_pairs,rename_from,rename_to,merge_target,merge_sources,delete_name,ban_id,unban_id,auto_delete,channel_forward)
type Step string
